package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/folio/docs"
)

// boolFlag is implemented by flag values that take no argument.
type boolFlag interface {
	IsBoolFlag() bool
}

// flagPredictors predicts the values of every flag of fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(boolFlag); ok && b.IsBoolFlag() {
			flags[f.Name] = predict.Nothing
			return
		}
		flags[f.Name] = predict.Something
	})
	return flags
}

// Completion returns the shell completion tree of invest, global flags taken
// from global.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command, len(Commands)),
		Flags: flagPredictors(global),
	}
	root.Flags["env-file"] = predict.Files("*")

	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}

	root.Sub["deposit"].Flags["class"] = predict.Set{"FD", "Bond"}
	root.Sub["import"].Args = predict.Files("*.jsonl")
	root.Sub["export"].Flags["o"] = predict.Files("*.jsonl")
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}
