// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TopicInfo holds the inferred topic and keywords of a draft, per language.
// A language with no usable text maps to an empty topic and no keywords.
type TopicInfo struct {
	Topic    map[Language]string   `json:"topic" yaml:"topic"`
	Keywords map[Language][]string `json:"keywords" yaml:"keywords"`
}

// NewTopicInfo returns a TopicInfo with empty entries for every language.
func NewTopicInfo() TopicInfo {
	info := TopicInfo{
		Topic:    make(map[Language]string, len(Languages)),
		Keywords: make(map[Language][]string, len(Languages)),
	}
	for _, l := range Languages {
		info.Topic[l] = ""
		info.Keywords[l] = []string{}
	}
	return info
}
