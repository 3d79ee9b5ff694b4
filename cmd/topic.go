package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/etnz/folio/docs"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `invest topic [<topic>...]

  Shows the documentation of the given topics, the topic list when none is
  given, or every topic with '*'.
`
}

func (*topicCmd) SetFlags(f *flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return fail("Error reading doc", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
