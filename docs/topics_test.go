package docs

import (
	"bufio"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// Every topic listed in readme.md must load, and every .md file must be
// listed in readme.md, so the index never drifts from the content.
func TestReadmeListsEveryTopic(t *testing.T) {
	readme, err := GetTopic("readme")
	if err != nil {
		t.Fatalf("failed to load readme: %v", err)
	}

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(strings.NewReader(readme))
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			listed = append(listed, strings.TrimSpace(matches[1]))
		}
	}
	if len(listed) == 0 {
		t.Fatal("readme.md lists no topics")
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("topic %q listed in readme.md cannot be loaded: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		found := false
		for _, l := range listed {
			if l == topic {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestTopicsAreValidMarkdown(t *testing.T) {
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	all = append(all, "readme")

	md := goldmark.New()
	for _, topic := range all {
		content, err := GetTopic(topic)
		if err != nil {
			t.Fatalf("loading %q: %v", topic, err)
		}
		reader := text.NewReader([]byte(content))
		doc := md.Parser().Parse(reader)
		if !doc.HasChildren() {
			t.Errorf("topic %q parses to an empty document", topic)
		}
	}
}

func TestGetTopicsConcatenatesAndExpandsStar(t *testing.T) {
	doc, err := GetTopics("ledger", "recurrence")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "# Ledger") || !strings.Contains(doc, "# Recurrence") {
		t.Errorf("concatenated topics are missing a section:\n%s", doc)
	}

	everything, err := GetTopics("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(everything, "# Simulation") {
		t.Error("star expansion did not include the simulation topic")
	}

	if _, err := GetTopics("no-such-topic"); err == nil {
		t.Error("expected an error for an unknown topic")
	}
}
