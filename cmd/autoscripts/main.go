// Package main provides the entry point for the autoscripts CLI.
//
// autoscripts bundles three small automation tools: a polite same-domain
// web scraper, a file organizer, and a streaming CSV transformer.
//
// Usage:
//
//	autoscripts scrape --config config.yaml
//	autoscripts organize --source ~/Downloads --target ~/Sorted
//	autoscripts tabular --input data.csv --output out.csv
//
// See --help for all available options.
package main

// main is the entry point for autoscripts.
func main() {
	Execute()
}
