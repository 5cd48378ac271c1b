// Package raven builds a static blog from Markdown drafts.
//
// # Quick Start
//
// Resolve the project root, create a Site and rebuild it:
//
//	layout, err := project.Resolve("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	site, err := raven.New(layout, raven.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := site.Rebuild(ctx)
//
// # Rebuild Pipeline
//
// A rebuild regenerates every output from scratch:
//
//  1. Take the project lock and read Config/
//  2. Clear Articles-html/ and Articles-md/, copy images and static files
//  3. Assign metadata to drafts that have none
//  4. Render each draft through Goldmark into the page templates
//  5. Build the homepage listing and main.html
//  6. Write the RSS and Atom feeds
//
// # Publishing
//
// Publish moves a file from Unpublished/ to Drafts/, rebuilds and assigns
// its metadata. GenerateMetadata assigns metadata to one draft only.
//
// # Concurrency
//
// Every mutating operation holds <root>/.raven.lock for its duration. A second
// process gets ErrLocked.
package raven
