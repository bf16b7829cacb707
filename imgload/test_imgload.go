package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/chromedp/chromedp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/optinsoft/go-imgload-test/testlib"
)

func saveResults(harness *testlib.Harness, options *testlib.TestOptions) error {
	db, err := sql.Open("sqlite3", options.SqliteDbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return harness.SaveResults(db, options.SqliteResultsTable)
}

func main() {
	var options testlib.TestOptions

	err := testlib.LoadOptions(&options, "imgload", "ImgloadResults")
	if err != nil {
		log.Fatal(err)
	}

	dir, err := testlib.TempDir(&options)
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	opts, err := testlib.DefaultOpts(&options, dir)
	if err != nil {
		log.Fatal(err)
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	pageCtx, cancel := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(log.Printf))
	defer cancel()

	if err := chromedp.Run(pageCtx); err != nil {
		log.Fatal(err)
	}

	pageURL := options.PageURL
	if pageURL == "" {
		fixture, err := testlib.NewFixtureServer(options.ExpectedWidth, options.ExpectedHeight)
		if err != nil {
			log.Fatal(err)
		}
		defer fixture.Close()
		pageURL = fixture.PageURL()
		log.Printf("fixture page: %s", pageURL)

		readyCtx, cancelReady := context.WithTimeout(pageCtx, options.WaitTimeout)
		if err := testlib.WaitReachable(readyCtx, pageURL, options.PollInterval); err != nil {
			cancelReady()
			log.Fatal(err)
		}
		cancelReady()
	}

	if err := testlib.RunWithTimeout(pageCtx, options.WaitTimeout,
		chromedp.Navigate(pageURL),
		testlib.WaitImageLoaded("img", chromedp.ByQuery),
	); err != nil {
		log.Fatal(err)
	}

	var width, height int
	if err := testlib.RunWithTimeout(pageCtx, options.WaitTimeout,
		testlib.ImageSize("img", &width, &height, chromedp.ByQuery),
	); err != nil {
		log.Fatal(err)
	}

	harness := testlib.NewHarness()
	harness.Is(width, options.ExpectedWidth, "image width")
	harness.Is(height, options.ExpectedHeight, "image height")
	if err := harness.Finish(); err != nil {
		log.Fatal(err)
	}

	if options.SqliteDbPath != "" {
		if err := saveResults(harness, &options); err != nil {
			log.Fatal(err)
		}
	}

	if !harness.Passed() {
		os.Exit(1)
	}
}
