package webutil

import (
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/locales/id" // インドネシア語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	id_translations "github.com/go-playground/validator/v10/translations/id"
)

// Validator はアプリケーション全体で共有されるバリデータインスタンスです。
var Validator *validator.Validate

// Trans はエラーメッセージを翻訳するためのトランスレータです。
var Trans ut.Translator

// ユーザ向けメッセージに使うフィールド名の対訳表。
var fieldNameTranslations = map[string]string{
	"message":         "pesan",
	"query":           "kata kunci pencarian",
	"user_id":         "ID pengguna",
	"start_surah":     "nomor surah",
	"mode":            "mode hafalan",
	"difficulty":      "tingkat kesulitan",
	"user_attempt":    "teks hafalan",
	"conversation_id": "ID percakapan",
}

func init() {
	Validator = validator.New()

	// JSONタグからフィールド名を取得するように設定
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// ユーザ向けのエラーメッセージはインドネシア語で返す
	indonesian := id.New()
	uni := ut.New(indonesian, indonesian)
	var found bool
	Trans, found = uni.GetTranslator("id")
	if !found {
		log.Fatal("translator not found")
	}

	if err := id_translations.RegisterDefaultTranslations(Validator, Trans); err != nil {
		log.Fatal(err)
	}

	// registerTranslation は、メッセージテンプレートを登録するヘルパー関数
	registerTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			fieldName := fe.Field()
			translatedFieldName, ok := fieldNameTranslations[fieldName]
			if !ok {
				translatedFieldName = fieldName
			}
			t, _ := ut.T(tag, translatedFieldName)
			return t
		})
	}

	registerTranslation("required", "{0} wajib diisi.")
	registerTranslation("uuid", "{0} harus berupa UUID yang valid.")

	// min/max はパラメータ付きなので個別に登録する
	registerRangeTranslation := func(tag string, msg string) {
		Validator.RegisterTranslation(tag, Trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			fieldName := fe.Field()
			translatedFieldName, ok := fieldNameTranslations[fieldName]
			if !ok {
				translatedFieldName = fieldName
			}
			t, _ := ut.T(tag, translatedFieldName, fe.Param())
			return t
		})
	}

	registerRangeTranslation("min", "{0} minimal {1}.")
	registerRangeTranslation("max", "{0} maksimal {1}.")
}
