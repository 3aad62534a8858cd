package parsers

import (
	"regexp"
	"strings"
)

var (
	// First-attribute image tags, as produced by the book sources
	imageTagPattern = regexp.MustCompile(`<img src="([^"]+)"`)
	absoluteURL     = regexp.MustCompile(`^https?://`)
)

// ImageBase returns the URL that relative images of a book are anchored at.
func ImageBase(root, sourceName string) string {
	return strings.TrimSuffix(root, "/") + "/" + sourceName
}

// IsAbsoluteURL reports whether src starts with http:// or https://.
func IsAbsoluteURL(src string) bool {
	return absoluteURL.MatchString(src)
}

// RewriteImageURLs replaces relative sources of <img src="..."> tags with
// base + "/" + src. Absolute sources and all other text are left as they are.
func RewriteImageURLs(content, base string) string {
	base = strings.TrimSuffix(base, "/")

	return imageTagPattern.ReplaceAllStringFunc(content, func(tag string) string {
		src := imageTagPattern.FindStringSubmatch(tag)[1]
		if IsAbsoluteURL(src) {
			return tag
		}
		return `<img src="` + base + "/" + src + `"`
	})
}

// ImageSources lists the src values of all image tags in order of appearance.
func ImageSources(content string) []string {
	matches := imageTagPattern.FindAllStringSubmatch(content, -1)
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, m[1])
	}
	return sources
}

// RelativeImageSources lists the sources RewriteImageURLs would change.
func RelativeImageSources(content string) []string {
	var relative []string
	for _, src := range ImageSources(content) {
		if !IsAbsoluteURL(src) {
			relative = append(relative, src)
		}
	}
	return relative
}
