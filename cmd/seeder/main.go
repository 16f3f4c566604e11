// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/newsmill"
	"github.com/poiesic/newsmill/core"
	"github.com/poiesic/newsmill/ingestion"
)

// Small sample corpus. The last two stories are deliberate near-copies
// of earlier ones so the duplicate detector has something to find.
var stories = []core.Article{
	{Source: "citydesk", Title: "Harbor rail line approved after decade of debate",
		Text: "The transit authority board voted to approve the harbor rail line, clearing the way for construction to begin next spring. Supporters cited ridership studies projecting forty thousand daily passengers, while opponents argued the money would be better spent on the bus network."},
	{Source: "citydesk", Title: "Downtown farmers market expands to two days a week",
		Text: "Organizers announced the downtown farmers market will open on Wednesdays in addition to Saturdays, citing record vendor applications and steady foot traffic through the summer season."},
	{Source: "wire", Title: "Regional drought prompts new watering restrictions",
		Text: "Water managers imposed stage two restrictions across the valley after reservoir levels fell to their lowest point in fifteen years. Outdoor watering is now limited to two days per week."},
	{Source: "wire", Title: "University lab maps coral genomes in record time",
		Text: "Researchers at the marine science institute published the complete genomes of twelve coral species, a dataset they say will help predict which reefs can survive warming oceans."},
	{Source: "citydesk", Title: "Library branch reopens with expanded hours",
		Text: "After an eight month renovation, the eastside library branch reopened with evening hours, a new children's wing, and fifty public computers. The architect preserved the original reading room ceiling."},
	{Source: "wire", Title: "Storm cleanup continues along the coast",
		Text: "Utility crews restored power to most neighborhoods by Sunday evening, though officials warned that debris removal from last week's storm could take another month in the hardest hit areas."},
	{Source: "business", Title: "Chipmaker breaks ground on fabrication plant",
		Text: "Executives joined state officials to break ground on a semiconductor fabrication plant expected to employ three thousand workers. Production is scheduled to start within four years."},
	{Source: "business", Title: "Grocery chain to close three underperforming stores",
		Text: "The regional grocery chain said it will close three stores by the end of the quarter, citing rising rents and shifting shopping habits. Employees will be offered transfers to nearby locations."},
	{Source: "sports", Title: "City marathon sets registration record",
		Text: "More than thirty thousand runners registered for the autumn marathon, the largest field in the race's history. Organizers added a second start wave to ease congestion on the bridge."},
	{Source: "wire", Title: "Astronomers spot comet visible to the naked eye",
		Text: "A newly discovered comet will be visible without a telescope for the next two weeks, astronomers said, best seen an hour before sunrise away from city lights."},
	{Source: "blog", Title: "Harbor rail line approved after a decade of debate",
		Text: "Updated 5 minutes ago. The transit authority board voted to approve the harbor rail line, clearing the way for construction to begin next spring. Supporters cited ridership studies projecting forty thousand daily passengers, while opponents argued the money would be better spent on the bus network."},
	{Source: "blog", Title: "Drought prompts new watering restrictions",
		Text: "Water managers imposed stage two restrictions across the valley after reservoir levels fell to their lowest point in fifteen years. Outdoor watering is now limited to two days per week, officials said."},
}

var seedFileName = flag.String("src", "", "file of seed data, one title<TAB>body per line")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// articlesFromFile returns an iterator over articles parsed from a file.
// Each line holds a title and body separated by a tab.
func articlesFromFile(filename string) (iter.Seq[core.Article], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(core.Article) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			title, body, _ := strings.Cut(scanner.Text(), "\t")
			if title == "" && body == "" {
				continue
			}
			if !yield(core.Article{Source: "seed", Title: title, Text: body}) {
				return
			}
		}
	}, nil
}

// articlesFromSlice returns an iterator over a slice of articles.
func articlesFromSlice(articles []core.Article) iter.Seq[core.Article] {
	return func(yield func(core.Article) bool) {
		for _, article := range articles {
			if !yield(article) {
				return
			}
		}
	}
}

// ingestBatched reads from a source iterator and ingests articles in batches.
func ingestBatched(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[core.Article], batchSize int) error {
	batch := make([]*core.Article, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		report, err := pipeline.Ingest(ctx, batch, nil)
		if err != nil {
			return err
		}
		for _, pair := range report.Duplicates {
			fmt.Printf("near-duplicate: %s ~ %s (%.3f)\n", pair.Id1, pair.Id2, pair.Similarity)
		}
		batch = batch[:0]
		return nil
	}

	for article := range source {
		a := article
		batch = append(batch, &a)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func main() {
	db, err := newsmill.NewDatabase("./news_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Compare new articles against everything already stored
	if _, err := ingester.SeedFromStorage(ctx); err != nil {
		panic(err)
	}

	// Determine source of seed data
	var source iter.Seq[core.Article]
	if seedFileName != nil && *seedFileName != "" {
		source, err = articlesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = articlesFromSlice(stories)
	}

	// Ingest in batches of 5
	if err := ingestBatched(ctx, ingester, source, 5); err != nil {
		panic(err)
	}
}
