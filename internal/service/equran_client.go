package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EQuranClient は equran.id の公開 API (v2) から本文・翻訳・タフシールを取得します。
type EQuranClient interface {
	ListSurahs(ctx context.Context) ([]SurahSummary, error)
	GetSurah(ctx context.Context, surahNumber int) (*SurahDetail, error)
	GetTafsir(ctx context.Context, surahNumber int) ([]TafsirEntry, error)
}

type SurahSummary struct {
	Number     int    `json:"nomor"`
	NameArabic string `json:"nama"`
	NameLatin  string `json:"namaLatin"`
	VerseCount int    `json:"jumlahAyat"`
}

type AyatDetail struct {
	Number      int    `json:"nomorAyat"`
	ArabicText  string `json:"teksArab"`
	LatinText   string `json:"teksLatin"`
	Translation string `json:"teksIndonesia"`
}

type SurahDetail struct {
	SurahSummary
	Ayat []AyatDetail `json:"ayat"`
}

type TafsirEntry struct {
	Ayat int    `json:"ayat"`
	Text string `json:"teks"`
}

type equranClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewEQuranClient(baseURL string) EQuranClient {
	return &equranClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope は equran.id の共通レスポンス形式。
type equranEnvelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func fetchEQuran[T any](ctx context.Context, c *equranClient, path string) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, fmt.Errorf("equranClient: build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("equranClient: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("equranClient: GET %s: status %d", path, resp.StatusCode)
	}

	var envelope equranEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("equranClient: decode %s: %w", path, err)
	}
	return envelope.Data, nil
}

func (c *equranClient) ListSurahs(ctx context.Context) ([]SurahSummary, error) {
	return fetchEQuran[[]SurahSummary](ctx, c, "/surat")
}

func (c *equranClient) GetSurah(ctx context.Context, surahNumber int) (*SurahDetail, error) {
	detail, err := fetchEQuran[SurahDetail](ctx, c, fmt.Sprintf("/surat/%d", surahNumber))
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *equranClient) GetTafsir(ctx context.Context, surahNumber int) ([]TafsirEntry, error) {
	type tafsirData struct {
		Tafsir []TafsirEntry `json:"tafsir"`
	}
	data, err := fetchEQuran[tafsirData](ctx, c, fmt.Sprintf("/tafsir/%d", surahNumber))
	if err != nil {
		return nil, err
	}
	return data.Tafsir, nil
}
