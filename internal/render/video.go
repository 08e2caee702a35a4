package render

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// videoEmbedSrcPattern is the iframe src allow-list used by the sanitizer.
var videoEmbedSrcPattern = regexp.MustCompile(`^https://(?:www\.youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)

var youtubeTimePattern = regexp.MustCompile(`(?i)(\d+)(h|m|s)`)

type videoSource struct {
	Platform string
	EmbedURL string
}

func videoEmbed(props Props, _ []*Node) *Node {
	source, ok := parseVideoURL(props.Attrs["src"])
	if !ok {
		return nil
	}

	title := attrOr(props.Attrs, "title", source.Platform+" video")
	return Element("div", withID(props.Attrs, []Attr{
		{Key: "class", Val: classes("video-embed", props.Attrs["class"])},
		{Key: "data-video-platform", Val: source.Platform},
	}),
		Element("iframe", []Attr{
			{Key: "src", Val: source.EmbedURL},
			{Key: "title", Val: title},
			{Key: "loading", Val: "lazy"},
			{Key: "allow", Val: "accelerometer; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share"},
			{Key: "allowfullscreen", Val: ""},
			{Key: "frameborder", Val: "0"},
			{Key: "referrerpolicy", Val: "strict-origin-when-cross-origin"},
		}),
	)
}

// parseVideoURL turns a watch-page URL into a player URL.
func parseVideoURL(raw string) (videoSource, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return videoSource{}, false
	}
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Hostname() == "" {
		return videoSource{}, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return videoSource{}, false
	}

	if source, ok := parseYouTube(parsed); ok {
		return source, true
	}
	return parseVimeo(parsed)
}

func parseYouTube(u *url.URL) (videoSource, bool) {
	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")
	var videoID string

	switch {
	case host == "youtu.be":
		videoID = firstSegment(path)
	case isHostOrSubdomain(host, "youtube.com"), isHostOrSubdomain(host, "youtube-nocookie.com"):
		switch {
		case path == "watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"), strings.HasPrefix(path, "live/"):
			videoID = firstSegment(path[strings.Index(path, "/")+1:])
		}
	default:
		return videoSource{}, false
	}

	if videoID == "" {
		return videoSource{}, false
	}

	values := url.Values{}
	values.Set("rel", "0")
	values.Set("modestbranding", "1")
	values.Set("playsinline", "1")
	if start := youtubeStart(u.Query()); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}

	return videoSource{
		Platform: "youtube",
		EmbedURL: "https://www.youtube-nocookie.com/embed/" + url.PathEscape(videoID) + "?" + values.Encode(),
	}, true
}

func parseVimeo(u *url.URL) (videoSource, bool) {
	host := strings.ToLower(u.Hostname())
	if !isHostOrSubdomain(host, "vimeo.com") {
		return videoSource{}, false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	videoID := ""
	for _, segment := range segments {
		if onlyDigits(segment) {
			videoID = segment
			break
		}
	}
	if videoID == "" {
		return videoSource{}, false
	}
	return videoSource{Platform: "vimeo", EmbedURL: "https://player.vimeo.com/video/" + videoID}, true
}

// youtubeStart accepts both "90" and "1m30s" forms of t/start.
func youtubeStart(query url.Values) int {
	value := query.Get("start")
	if value == "" {
		value = query.Get("t")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if onlyDigits(value) {
		seconds, _ := strconv.Atoi(value)
		return seconds
	}

	total := 0
	for _, match := range youtubeTimePattern.FindAllStringSubmatch(value, -1) {
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += amount * 3600
		case "m":
			total += amount * 60
		case "s":
			total += amount
		}
	}
	return total
}

func firstSegment(path string) string {
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}

func onlyDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}

func isHostOrSubdomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}
