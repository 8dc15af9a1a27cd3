// internal/service/tafsir_service_test.go
package service

import (
	"context"
	"testing"

	"go_quran_assistant/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExtractVerseReference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantRef  model.VerseRef
		wantFind bool
	}{
		{
			name:     "qs colon notation",
			input:    "Apa makna QS 2:255?",
			wantRef:  model.VerseRef{SurahNumber: 2, AyatNumber: 255},
			wantFind: true,
		},
		{
			name:     "qs with dot and spaces",
			input:    "jelaskan qs. 112 : 1",
			wantRef:  model.VerseRef{SurahNumber: 112, AyatNumber: 1},
			wantFind: true,
		},
		{
			name:     "surah ayat words",
			input:    "tafsir surah 18 ayat 10 dong",
			wantRef:  model.VerseRef{SurahNumber: 18, AyatNumber: 10},
			wantFind: true,
		},
		{
			name:     "surah number out of range",
			input:    "QS 115:1",
			wantFind: false,
		},
		{
			name:     "no reference at all",
			input:    "bagaimana cara bersyukur?",
			wantFind: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, found := ExtractVerseReference(tt.input)
			assert.Equal(t, tt.wantFind, found)
			if tt.wantFind {
				assert.Equal(t, tt.wantRef, ref)
			}
		})
	}
}

func Test_IsTafsirQuestion(t *testing.T) {
	assert.True(t, IsTafsirQuestion("Apa makna ayat ini?"))
	assert.True(t, IsTafsirQuestion("jelaskan TAFSIR surah al-ikhlas"))
	assert.False(t, IsTafsirQuestion("mulai sesi hafalan"))
}

func Test_tafsirService_StartDiscussion(t *testing.T) {
	ctx := context.Background()

	verse := &model.Verse{
		SurahNumber:    2,
		AyatNumber:     153,
		SurahNameLatin: "Al-Baqarah",
		ArabicText:     "يا ايها الذين امنوا استعينوا بالصبر والصلاة",
		Translation:    "Wahai orang-orang yang beriman! Mohonlah pertolongan dengan sabar dan salat.",
		TafsirSummary:  "Perintah memohon pertolongan dengan sabar dan salat.",
		Themes:         []string{"sabar", "ibadah"},
		ContextBefore:  "ayat sebelumnya",
	}

	t.Run("builds discussion material with related verses", func(t *testing.T) {
		retriever := &stubRetriever{
			verses: map[int]*model.Verse{
				(model.VerseRef{SurahNumber: 2, AyatNumber: 153}).Key(): verse,
			},
			searchResults: []*model.RetrievalCandidate{
				makeCandidate(2, 153, 1.0), // 自分自身は除外される
				makeCandidate(3, 200, 0.8),
				makeCandidate(103, 3, 0.75),
			},
		}
		svc := NewTafsirService(retriever, &stubLLM{}, testChatConfig())

		discussion, err := svc.StartDiscussion(ctx, 2, 153)

		require.NoError(t, err)
		assert.Equal(t, verse.TafsirSummary, discussion.Tafsir)
		require.Len(t, discussion.RelatedVerses, 2)
		assert.Equal(t, 3, discussion.RelatedVerses[0].SurahNumber)

		require.NotEmpty(t, discussion.DiscussionPoints)
		assert.Contains(t, discussion.DiscussionPoints[0], "Al-Baqarah")
		// テーマごとの論点が含まれる
		assert.GreaterOrEqual(t, len(discussion.DiscussionPoints), 4)
	})

	t.Run("related verse search failure still returns the discussion", func(t *testing.T) {
		retriever := &stubRetriever{
			verses: map[int]*model.Verse{
				(model.VerseRef{SurahNumber: 2, AyatNumber: 153}).Key(): verse,
			},
			searchErr: model.NewAppError("EMBEDDING_UNAVAILABLE", "down", "", model.ErrEmbeddingUnavailable),
		}
		svc := NewTafsirService(retriever, &stubLLM{}, testChatConfig())

		discussion, err := svc.StartDiscussion(ctx, 2, 153)

		require.NoError(t, err)
		assert.Empty(t, discussion.RelatedVerses)
		assert.NotEmpty(t, discussion.DiscussionPoints)
	})

	t.Run("unknown verse surfaces ErrVerseNotFound", func(t *testing.T) {
		svc := NewTafsirService(&stubRetriever{}, &stubLLM{}, testChatConfig())
		_, err := svc.StartDiscussion(ctx, 2, 999)
		assert.ErrorIs(t, err, model.ErrVerseNotFound)
	})
}

func Test_tafsirService_AnswerQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("direct reference is resolved without search", func(t *testing.T) {
		verse := &model.Verse{SurahNumber: 2, AyatNumber: 255, SurahNameLatin: "Al-Baqarah", ArabicText: "text", Translation: "terjemahan"}
		retriever := &stubRetriever{
			verses: map[int]*model.Verse{
				(model.VerseRef{SurahNumber: 2, AyatNumber: 255}).Key(): verse,
			},
		}
		llm := &stubLLM{answer: "jawaban tafsir"}
		svc := NewTafsirService(retriever, llm, testChatConfig())

		resp, err := svc.AnswerQuestion(ctx, &model.TafsirQuestionRequest{Question: "Apa makna QS 2:255?"})

		require.NoError(t, err)
		assert.True(t, resp.Grounded)
		require.Len(t, resp.Sources, 1)
		assert.Empty(t, retriever.searchQueries)
	})

	t.Run("falls back to semantic search without a reference", func(t *testing.T) {
		retriever := &stubRetriever{searchResults: []*model.RetrievalCandidate{makeCandidate(2, 153, 0.9)}}
		llm := &stubLLM{answer: "jawaban tafsir"}
		svc := NewTafsirService(retriever, llm, testChatConfig())

		resp, err := svc.AnswerQuestion(ctx, &model.TafsirQuestionRequest{Question: "apa makna kesabaran?"})

		require.NoError(t, err)
		assert.True(t, resp.Grounded)
		require.Len(t, retriever.searchQueries, 1)
	})

	t.Run("no matches yields an honest ungrounded reply", func(t *testing.T) {
		svc := NewTafsirService(&stubRetriever{}, &stubLLM{}, testChatConfig())

		resp, err := svc.AnswerQuestion(ctx, &model.TafsirQuestionRequest{Question: "sesuatu yang tidak ada"})

		require.NoError(t, err)
		assert.False(t, resp.Grounded)
		assert.Empty(t, resp.Sources)
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		svc := NewTafsirService(&stubRetriever{}, &stubLLM{}, testChatConfig())
		_, err := svc.AnswerQuestion(ctx, &model.TafsirQuestionRequest{Question: " "})
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}
