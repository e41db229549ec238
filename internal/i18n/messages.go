// Package i18n holds the user-visible strings for the four supported
// languages. Raw internal error text is never shown on its own; it is only
// interpolated into an explicit cause placeholder.
package i18n

import "fmt"

type Key string

const (
	InvalidFileType   Key = "invalidFileType"
	ReservedFileName  Key = "reservedFileName"
	LoadFailed        Key = "loadFailed"
	PasswordRequired  Key = "passwordRequired"
	IncorrectPassword Key = "incorrectPassword"
	PasswordCancelled Key = "passwordCancelled"
	SummaryFailed     Key = "summaryFailed"
	ChatFailed        Key = "chatFailed"
	TranslateFailed   Key = "translateFailed"
)

const (
	Korean   = "한국어"
	English  = "English"
	Japanese = "日本語"
	Chinese  = "中文"
)

var messages = map[string]map[Key]string{
	English: {
		InvalidFileType:   "Only PDF files can be uploaded.",
		ReservedFileName:  "This file name is reserved. Please rename the file and try again.",
		LoadFailed:        "An error occurred while processing the PDF file: %s",
		PasswordRequired:  "This PDF is password-protected. Please enter the password.",
		IncorrectPassword: "The password is incorrect.",
		PasswordCancelled: "Password entry was cancelled.",
		SummaryFailed:     "Sorry, an error occurred while generating the summary.\n\n**Error:** %s",
		ChatFailed:        "Sorry, an error occurred while generating the reply.\n\n**Error:** %s",
		TranslateFailed:   "Sorry, an error occurred while translating.\n\n**Error:** %s",
	},
	Korean: {
		InvalidFileType:   "PDF 파일만 업로드할 수 있습니다.",
		ReservedFileName:  "예약된 파일 이름입니다. 파일 이름을 변경한 후 다시 시도해주세요.",
		LoadFailed:        "PDF 파일을 처리하는 중 오류가 발생했습니다: %s",
		PasswordRequired:  "암호로 보호된 PDF입니다. 암호를 입력해주세요.",
		IncorrectPassword: "암호가 올바르지 않습니다.",
		PasswordCancelled: "암호 입력이 취소되었습니다.",
		SummaryFailed:     "죄송합니다, 요약을 생성하는 중에 오류가 발생했습니다.\n\n**오류:** %s",
		ChatFailed:        "죄송합니다, 답변을 생성하는 중에 오류가 발생했습니다.\n\n**오류:** %s",
		TranslateFailed:   "죄송합니다, 번역하는 중에 오류가 발생했습니다.\n\n**오류:** %s",
	},
	Japanese: {
		InvalidFileType:   "PDFファイルのみアップロードできます。",
		ReservedFileName:  "このファイル名は予約されています。ファイル名を変更してから再試行してください。",
		LoadFailed:        "PDFファイルの処理中にエラーが発生しました: %s",
		PasswordRequired:  "このPDFはパスワードで保護されています。パスワードを入力してください。",
		IncorrectPassword: "パスワードが正しくありません。",
		PasswordCancelled: "パスワードの入力がキャンセルされました。",
		SummaryFailed:     "申し訳ありません、要約の生成中にエラーが発生しました。\n\n**エラー:** %s",
		ChatFailed:        "申し訳ありません、回答の生成中にエラーが発生しました。\n\n**エラー:** %s",
		TranslateFailed:   "申し訳ありません、翻訳中にエラーが発生しました。\n\n**エラー:** %s",
	},
	Chinese: {
		InvalidFileType:   "只能上传 PDF 文件。",
		ReservedFileName:  "该文件名为保留名称，请重命名文件后重试。",
		LoadFailed:        "处理 PDF 文件时出错：%s",
		PasswordRequired:  "此 PDF 受密码保护，请输入密码。",
		IncorrectPassword: "密码不正确。",
		PasswordCancelled: "已取消输入密码。",
		SummaryFailed:     "抱歉，生成摘要时出错。\n\n**错误：** %s",
		ChatFailed:        "抱歉，生成回答时出错。\n\n**错误：** %s",
		TranslateFailed:   "抱歉，翻译时出错。\n\n**错误：** %s",
	},
}

// T returns the message for key in the given language, falling back to
// English for unknown languages or missing entries.
func T(language string, key Key) string {
	if table, ok := messages[language]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return messages[English][key]
}

// Tf formats a message with a cause or other arguments.
func Tf(language string, key Key, args ...any) string {
	return fmt.Sprintf(T(language, key), args...)
}

// Languages lists the supported target languages in display order.
func Languages() []string {
	return []string{Korean, English, Japanese, Chinese}
}
