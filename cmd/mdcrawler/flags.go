package main

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

// convertFlags are the per-run conversion switches. Flags left unset keep
// the value from the convert section of the config.
type convertFlags struct {
	links, cleanWhitespace, headings, metadata, mainContent bool
	maxHeadingLevel                                         int
	removeScripts, removeStyles, removeComments, lineBreaks bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.links, "links", true, "render links and images")
	fs.BoolVar(&f.cleanWhitespace, "clean-whitespace", true, "collapse whitespace runs")
	fs.BoolVar(&f.headings, "headings", true, "render headings with # markers")
	fs.BoolVar(&f.metadata, "metadata", false, "prepend YAML front matter")
	fs.BoolVar(&f.mainContent, "main-content", false, "convert only the main article content")
	fs.IntVar(&f.maxHeadingLevel, "max-heading-level", crawler.DefaultMaxHeadingLevel, "deepest heading level rendered (1-6)")
	fs.BoolVar(&f.removeScripts, "remove-scripts", true, "drop script and noscript elements")
	fs.BoolVar(&f.removeStyles, "remove-styles", true, "drop style elements and stylesheet links")
	fs.BoolVar(&f.removeComments, "remove-comments", true, "drop HTML comments")
	fs.BoolVar(&f.lineBreaks, "preserve-line-breaks", true, "render <br> as hard line breaks")
}

func (f *convertFlags) apply(cmd *cobra.Command, base crawler.ConvertConfig) crawler.ConvertConfig {
	fs := cmd.Flags()
	set := func(name string, dst *bool, v bool) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	cfg := base
	set("links", &cfg.IncludeLinks, f.links)
	set("clean-whitespace", &cfg.CleanWhitespace, f.cleanWhitespace)
	set("headings", &cfg.PreserveHeadings, f.headings)
	set("metadata", &cfg.IncludeMetadata, f.metadata)
	set("main-content", &cfg.ExtractMainContent, f.mainContent)
	set("remove-scripts", &cfg.CleaningRules.RemoveScripts, f.removeScripts)
	set("remove-styles", &cfg.CleaningRules.RemoveStyles, f.removeStyles)
	set("remove-comments", &cfg.CleaningRules.RemoveComments, f.removeComments)
	set("preserve-line-breaks", &cfg.CleaningRules.PreserveLineBreaks, f.lineBreaks)
	if fs.Changed("max-heading-level") {
		cfg.MaxHeadingLevel = f.maxHeadingLevel
	}
	return cfg
}
