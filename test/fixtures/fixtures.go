// Package fixtures provides profile page fixtures for testing the fetchers
// and the extractor.
package fixtures

import "encoding/json"

// ProfileMarkdownEnglish is a reader-service rendering of an English profile.
const ProfileMarkdownEnglish = `Title: Creator Name (@creator) | TikTok

URL Source: https://www.tiktok.com/@creator

Markdown Content:
creator
=======

Creator Name

Follow

**312** Following **4.8M** Followers **102.3M** Likes

Just vibes. Business: creator@example.com
`

// ProfileMarkdownChinese is a rendering of a profile served with Chinese labels.
const ProfileMarkdownChinese = `Title: 创作者 (@chuangzuozhe) | TikTok

Markdown Content:
chuangzuozhe
============

**58** 关注 **1.2M** 粉丝 **35.6M** 获赞

喜欢的视频
`

// ProfileMarkdownNoStats is what the reader returns for a missing account.
const ProfileMarkdownNoStats = `Title: TikTok

Markdown Content:
Couldn't find this account

Looking for videos? Try browsing our trending creators, hashtags, and sounds.
`

// ProfileMarkdownTruncated is cut off after the first statistic.
const ProfileMarkdownTruncated = `Markdown Content:
**87** Following **1`

// ReaderEnvelope returns the JSON body the reader service sends for content.
func ReaderEnvelope(content string) string {
	body := map[string]any{
		"code":   200,
		"status": 20000,
		"data": map[string]any{
			"title":   "Creator Name (@creator) | TikTok",
			"url":     "https://www.tiktok.com/@creator",
			"content": content,
		},
	}
	out, _ := json.Marshal(body)
	return string(out)
}

// GenerateProfilePage creates an HTML profile page as a browser would render it.
func GenerateProfilePage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Creator Name (@creator) | TikTok</title></head>
<body>
<div data-e2e="user-page">
    <h1 data-e2e="user-title">creator</h1>
    <h2 data-e2e="user-subtitle">Creator Name</h2>
    <p data-e2e="user-stats"><strong>312</strong> Following <strong>4.8M</strong> Followers <strong>102.3M</strong> Likes</p>
    <h2 data-e2e="user-bio">Just vibes.</h2>
</div>
</body>
</html>
`
}

// GenerateEmptyPage creates an HTML page with no visible text.
func GenerateEmptyPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title></title></head>
<body><div id="app"></div></body>
</html>
`
}
