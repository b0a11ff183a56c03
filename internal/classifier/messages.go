package classifier

import "tiktok-stats/internal/domain"

var messages = map[Locale]map[domain.Code]string{
	LocaleZH: {
		domain.CodeMissingParameters:      "TikTok用户ID和Jina AI API Key是必填项",
		domain.CodeEmptyResponse:          "无法从目标用户页面获取有效内容，请稍后再试或检查用户ID是否正确。",
		domain.CodeParsingFailed:          "成功获取页面内容，但未能解析出关注、粉丝或获赞数据。页面结构可能已更改或内容不完整。",
		domain.CodeUnauthorized:           "Jina AI API Key 无效或已过期。",
		domain.CodeForbidden:              "Jina AI API 拒绝访问该页面。",
		domain.CodeRateLimited:            "Jina AI API 请求过于频繁，请稍后再试。",
		domain.CodeTimeout:                "连接 Jina AI 服务超时，请稍后再试。",
		domain.CodeInvalidResponseContent: "Jina AI 返回的Markdown内容为空或无效。",
		domain.CodeInternal:               "服务器内部错误处理请求失败",
		domain.CodeMissingAPIKey:          "获取云端历史记录需要提供Jina AI API Key。",
		domain.CodeMissingHistoryParams:   "保存历史记录所需参数不完整 (需要jinaApiKey, tiktokUserId, followingCount, followersCount, likesCount)。",
		domain.CodeHistoryGetFailed:       "获取云端历史记录时发生服务器内部错误。",
		domain.CodeHistorySaveFailed:      "保存历史记录到云端时发生服务器内部错误。",
	},
	LocaleEN: {
		domain.CodeMissingParameters:      "TikTok user ID and Jina AI API key are required",
		domain.CodeEmptyResponse:          "Could not get usable content from the profile page. Try again later or check the user ID.",
		domain.CodeParsingFailed:          "Fetched the page but could not find following, followers or likes. The page layout may have changed or the content is incomplete.",
		domain.CodeUnauthorized:           "The Jina AI API key is invalid or expired.",
		domain.CodeForbidden:              "The Jina AI API refused access to this page.",
		domain.CodeRateLimited:            "Too many requests to the Jina AI API. Try again later.",
		domain.CodeTimeout:                "Timed out connecting to the Jina AI service. Try again later.",
		domain.CodeInvalidResponseContent: "The Jina AI response had empty or invalid markdown content.",
		domain.CodeInternal:               "Internal server error while processing the request",
		domain.CodeMissingAPIKey:          "A Jina AI API key is required to load cloud history.",
		domain.CodeMissingHistoryParams:   "History save parameters are incomplete (jinaApiKey, tiktokUserId, followingCount, followersCount, likesCount are required).",
		domain.CodeHistoryGetFailed:       "Internal server error while loading cloud history.",
		domain.CodeHistorySaveFailed:      "Internal server error while saving history to the cloud.",
	},
}

// Message returns the text for code in locale, falling back to Chinese.
func Message(locale Locale, code domain.Code) string {
	if m, ok := messages[locale][code]; ok {
		return m
	}
	return messages[LocaleZH][code]
}
