package testlib

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"gopkg.in/ini.v1"
)

const (
	DefaultExpectedWidth  = 500
	DefaultExpectedHeight = 378
	DefaultPollInterval   = time.Millisecond
	DefaultWaitTimeout    = 15 * time.Second
)

type TestOptions struct {
	Scenario           string
	PageURL            string
	UserAgent          string
	Proxy              string
	Headless           bool
	ExpectedWidth      int
	ExpectedHeight     int
	PollInterval       time.Duration
	WaitTimeout        time.Duration
	SqliteDbPath       string
	SqliteResultsTable string
}

func LoadOptions(options *TestOptions, scenario string, sqliteResultsTable string) error {

	options.Scenario = scenario
	options.ExpectedWidth = DefaultExpectedWidth
	options.ExpectedHeight = DefaultExpectedHeight
	options.PollInterval = DefaultPollInterval
	options.WaitTimeout = DefaultWaitTimeout

	pagePtr := flag.String("page", "", "test page url (empty: serve builtin fixture)")
	uaPtr := flag.String("ua", "", "user agent")
	proxyPtr := flag.String("proxy", "", "proxy_host:proxy_port")
	headlessPtr := flag.Bool("headless", true, "run browser headless")
	timeoutPtr := flag.Duration("timeout", 0, "wait timeout")

	flag.Parse()

	cfg, err := LoadConfig(options)
	if err != nil {
		return err
	}
	if cfg != nil {
		applyConfig(options, cfg)
	}

	if *pagePtr != "" {
		options.PageURL = *pagePtr
	}
	if *uaPtr != "" {
		options.UserAgent = *uaPtr
	}
	if *proxyPtr != "" {
		options.Proxy = *proxyPtr
	}
	options.Headless = *headlessPtr
	if *timeoutPtr > 0 {
		options.WaitTimeout = *timeoutPtr
	}

	if options.SqliteResultsTable == "" {
		options.SqliteResultsTable = sqliteResultsTable
	}

	return nil
}

func applyConfig(options *TestOptions, cfg *ini.File) {
	scenarioSection := options.Scenario
	browserSection := "browser"
	sqliteSection := "sqlite"

	options.PageURL = cfg.Section(scenarioSection).Key("page").String()
	if w, err := cfg.Section(scenarioSection).Key("expectedWidth").Int(); err == nil {
		options.ExpectedWidth = w
	}
	if h, err := cfg.Section(scenarioSection).Key("expectedHeight").Int(); err == nil {
		options.ExpectedHeight = h
	}
	if ms, err := cfg.Section(scenarioSection).Key("pollIntervalMs").Int(); err == nil && ms > 0 {
		options.PollInterval = time.Duration(ms) * time.Millisecond
	}
	if s, err := cfg.Section(scenarioSection).Key("waitTimeoutSeconds").Int(); err == nil && s > 0 {
		options.WaitTimeout = time.Duration(s) * time.Second
	}
	options.SqliteResultsTable = cfg.Section(scenarioSection).Key("resultsTable").String()

	options.UserAgent = cfg.Section(browserSection).Key("userAgent").String()
	options.Proxy = cfg.Section(browserSection).Key("proxy").String()

	options.SqliteDbPath = cfg.Section(sqliteSection).Key("dbPath").String()
}

func TempDir(_ *TestOptions) (string, error) {
	dir, err := ioutil.TempDir("", "imgload-test")
	if err == nil {
		log.Printf("temp dir: %s", dir)
	}
	return dir, err
}

func DefaultOpts(options *TestOptions, dir string) ([]chromedp.ExecAllocatorOption, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.UserDataDir(dir),
		chromedp.Flag("headless", options.Headless),
		chromedp.Flag("enable-automation", false),
	)

	if options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(options.UserAgent))
	}
	if options.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(fmt.Sprintf("http://%s", options.Proxy)))
	}

	return opts, nil
}

func LoadConfig(options *TestOptions) (*ini.File, error) {
	if _, err := os.Stat("config.ini"); os.IsNotExist(err) {
		return nil, nil
	}
	return ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, "config.ini")
}

func RunWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(timeoutCtx, actions...)
}
