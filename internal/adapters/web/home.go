package web

import (
	"github.com/a-h/templ"

	"tiktok-stats/internal/classifier"
)

//go:generate templ generate

type homeText struct {
	title, target, key, submit, history string
}

var homeTexts = map[classifier.Locale]homeText{
	classifier.LocaleZH: {
		title:   "TikTok 账号数据查询",
		target:  "TikTok 用户名或主页链接",
		key:     "Jina API Key",
		submit:  "查询",
		history: "查询历史",
	},
	classifier.LocaleEN: {
		title:   "TikTok profile stats",
		target:  "TikTok handle or profile URL",
		key:     "Jina API key",
		submit:  "Query",
		history: "History",
	},
}

// Home is the query page. It posts to the JSON API from the browser.
func Home(locale classifier.Locale) templ.Component {
	text, ok := homeTexts[locale]
	if !ok {
		locale = classifier.LocaleZH
		text = homeTexts[locale]
	}
	return homePage(string(locale), text)
}
