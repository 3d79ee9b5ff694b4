// Package docs embeds the folio user guide, one markdown file per topic.
package docs

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// index is the topic listing every other topic.
const index = "readme"

// GetTopic returns the markdown of a topic. "*" returns every topic.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		return GetTopics(topic)
	}
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics concatenates several topics, expanding "*" to all of them.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		names := []string{topic}
		if topic == "*" {
			all, err := GetAllTopics()
			if err != nil {
				return "", err
			}
			names = all
		}
		for _, name := range names {
			content, err := GetTopic(name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted names of every topic except the index.
func GetAllTopics() ([]string, error) {
	var topics []string
	err := fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if name != index {
			topics = append(topics, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(topics)
	return topics, nil
}
