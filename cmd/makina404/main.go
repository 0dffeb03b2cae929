package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/firaterror/makina404/internal/alert"
	"github.com/firaterror/makina404/internal/capture"
	"github.com/firaterror/makina404/internal/config"
	"github.com/firaterror/makina404/internal/domainlist"
	"github.com/firaterror/makina404/internal/engine"
	"github.com/firaterror/makina404/internal/output"
	"github.com/firaterror/makina404/internal/pool"
	"github.com/firaterror/makina404/internal/recon"
)

// Set via ldflags at build time.
var version = "dev"

// webhookEnv supplies the alert endpoint; absence disables alerting.
const webhookEnv = "DISCORD_SCANNER_WEBHOOK"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.127 Safari/537.36 SubdomainScanner/1.0"

func main() {
	output.Version = version

	var (
		inputFile          string
		toolPath           string
		configPath         string
		probeConcurrency   int
		captureConcurrency int
		httpTimeout        time.Duration
		browserTimeout     time.Duration
		userAgent          string
		noColor            bool
		silent             bool
		verbose            bool
	)

	rootCmd := &cobra.Command{
		Use:   "makina404",
		Short: "Hunt subdomain takeovers",
		Long:  "Subdomain takeover candidate scanner. Enumerates subdomains per root domain, probes each over HTTPS then HTTP, and screenshots and alerts on every 404.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Respect NO_COLOR env var.
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				noColor = true
			}

			webhookURL := os.Getenv(webhookEnv)

			// Config file fills in flags the user left at their defaults.
			if configPath != "" {
				file, err := config.Load(configPath)
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if !flags.Changed("input") && file.Input != "" {
					inputFile = file.Input
				}
				if !flags.Changed("tool") && file.Tool != "" {
					toolPath = file.Tool
				}
				if !flags.Changed("probe-concurrency") && file.ProbeConcurrency > 0 {
					probeConcurrency = file.ProbeConcurrency
				}
				if !flags.Changed("capture-concurrency") && file.CaptureConcurrency > 0 {
					captureConcurrency = file.CaptureConcurrency
				}
				if !flags.Changed("http-timeout") && file.HTTPTimeout > 0 {
					httpTimeout = file.HTTPTimeout
				}
				if !flags.Changed("browser-timeout") && file.BrowserTimeout > 0 {
					browserTimeout = file.BrowserTimeout
				}
				if !flags.Changed("ua") && file.UserAgent != "" {
					userAgent = file.UserAgent
				}
				if webhookURL == "" {
					webhookURL = file.WebhookURL
				}
			}

			domains, err := domainlist.Load(inputFile)
			if err != nil {
				return err
			}

			progress := output.NewProgress(os.Stderr, verbose, silent)

			// A missing or malformed endpoint disables alerting for the
			// whole run, logged once here rather than per candidate.
			var notifier engine.Notifier
			if webhookURL == "" {
				progress.Warn("no webhook configured, alerting disabled")
			} else {
				w, err := alert.NewWebhook(webhookURL)
				if err != nil {
					progress.Warn(fmt.Sprintf("%s, alerting disabled", err))
				} else {
					notifier = w
				}
			}

			if !silent {
				output.WriteHeader(os.Stderr, noColor, len(domains), probeConcurrency, captureConcurrency, notifier != nil)
			}

			ctx := context.Background()

			capturer, err := capture.New(ctx, capture.Options{
				Pool:      pool.New(captureConcurrency),
				Timeout:   browserTimeout,
				UserAgent: userAgent,
			})
			if err != nil {
				return err
			}
			defer capturer.Close()

			stages := engine.Stages{
				Enumerator: &recon.ToolEnumerator{Path: toolPath},
				Prober: &recon.Prober{
					Client:    recon.NewHTTPClient(),
					Pool:      pool.New(probeConcurrency),
					Timeout:   httpTimeout,
					UserAgent: userAgent,
				},
				Capturer: capturer,
				Notifier: notifier,
			}

			cfg := engine.Config{
				Domains:            domains,
				ProbeConcurrency:   probeConcurrency,
				CaptureConcurrency: captureConcurrency,
				HTTPTimeout:        httpTimeout,
				BrowserTimeout:     browserTimeout,
				UserAgent:          userAgent,
			}

			result, err := engine.Run(ctx, cfg, stages, progress)
			if err != nil {
				return err
			}

			progress.Complete()
			output.WriteDetections(os.Stdout, result, noColor)
			output.WriteSummary(os.Stdout, result, noColor)

			return nil
		},
	}

	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "domains.txt", "Root domain list, one per line")
	rootCmd.Flags().StringVar(&toolPath, "tool", "rapiddns", "Enumeration tool path")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().IntVar(&probeConcurrency, "probe-concurrency", 100, "Max concurrent HTTP probes")
	rootCmd.Flags().IntVar(&captureConcurrency, "capture-concurrency", 5, "Max concurrent browser captures")
	rootCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 10*time.Second, "Per-request probe timeout")
	rootCmd.Flags().DurationVar(&browserTimeout, "browser-timeout", 15*time.Second, "Per-navigation browser timeout")
	rootCmd.Flags().StringVar(&userAgent, "ua", defaultUserAgent, "User-Agent for probes and browser")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")
	rootCmd.Flags().BoolVar(&silent, "silent", false, "Results only, no progress")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Per-candidate probe detail")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("makina404 {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
