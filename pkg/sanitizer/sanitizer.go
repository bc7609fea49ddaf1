package sanitizer

import "strings"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	textPipeline = Pipeline{TrimAndNormalize}
	urlPipeline  = Pipeline{strings.TrimSpace}
)

func SanitizeText(input string) string {
	return textPipeline.Apply(input)
}

func SanitizeURL(input string) string {
	return urlPipeline.Apply(input)
}

// SanitizeTextPtr applies SanitizeText to an optional patch field.
func SanitizeTextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	s := SanitizeText(*input)
	return &s
}

func SanitizeEmailPtr(input *string) *string {
	if input == nil {
		return nil
	}
	s := NormalizeEmail(*input)
	return &s
}
