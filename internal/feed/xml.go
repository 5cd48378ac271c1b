package feed

import (
	"encoding/xml"
	"time"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Image         rssImage  `xml:"image"`
	Items         []rssItem `xml:"item"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title   string  `xml:"title"`
	Link    string  `xml:"link"`
	GUID    rssGUID `xml:"guid"`
	PubDate string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Xmlns    string      `xml:"xmlns,attr"`
	ID       string      `xml:"id"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Updated  string      `xml:"updated"`
	Author   atomAuthor  `xml:"author"`
	Link     []atomLink  `xml:"link"`
	Logo     string      `xml:"logo"`
	Entry    []atomEntry `xml:"entry"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Published string     `xml:"published,omitempty"`
	Updated   string     `xml:"updated"`
	Link      []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// BuildRSS renders an RSS 2.0 document.
func BuildRSS(meta Meta, entries []Entry) ([]byte, error) {
	base := meta.BaseURL()
	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         meta.title(),
			Link:          base,
			Description:   meta.description(),
			Language:      language,
			LastBuildDate: meta.Built.Format(time.RFC1123Z),
			Image:         rssImage{URL: base + logoPath, Title: meta.title(), Link: base},
			Items:         make([]rssItem, 0, len(entries)),
		},
	}
	for _, e := range entries {
		link := meta.EntryLink(e.Slug)
		item := rssItem{
			Title: e.Slug,
			Link:  link,
			GUID:  rssGUID{IsPermaLink: "false", Value: EntryID(link)},
		}
		if !e.Published.IsZero() {
			item.PubDate = e.Published.Format(time.RFC1123Z)
		}
		feed.Channel.Items = append(feed.Channel.Items, item)
	}
	return encode(&feed)
}

// BuildAtom renders an Atom 1.0 document. Entries without a valid date use
// the build time for updated.
func BuildAtom(meta Meta, entries []Entry) ([]byte, error) {
	base := meta.BaseURL()
	built := meta.Built.UTC().Format(time.RFC3339)
	feed := atomFeed{
		Xmlns:    atomNamespace,
		ID:       EntryID(base + "/feed"),
		Title:    meta.title(),
		Subtitle: meta.description(),
		Updated:  built,
		Author:   atomAuthor{Name: meta.SiteName},
		Link: []atomLink{
			{Href: base, Rel: "alternate"},
			{Href: base + "/" + AtomFile, Rel: "self"},
		},
		Logo:  base + logoPath,
		Entry: make([]atomEntry, 0, len(entries)),
	}
	for _, e := range entries {
		link := meta.EntryLink(e.Slug)
		entry := atomEntry{
			ID:      EntryID(link),
			Title:   e.Slug,
			Updated: built,
			Link:    []atomLink{{Href: link, Rel: "alternate"}},
		}
		if !e.Published.IsZero() {
			entry.Published = e.Published.UTC().Format(time.RFC3339)
			entry.Updated = entry.Published
		}
		feed.Entry = append(feed.Entry, entry)
	}
	return encode(&feed)
}
