// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//nolint:gosec
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/countervm/utils"
)

const fsModeWrite = 0o600

var panels = []string{
	"increase(vm_txs_submitted[5s])/5",
	"increase(vm_txs_rejected[5s])/5",
	"increase(chain_txs_succeeded[5s])/5",
	"increase(chain_txs_failed[5s])/5",
	"increase(chain_compute_units[5s])/5",
	"increase(chain_state_changes[5s])/5",
	"vm_seen_txs",
	"increase(chain_tx_execute_sum[5s])/1000000/5",
	"increase(chain_tx_commit_sum[5s])/1000000/5",
	"increase(pebble_write_stall_sum[5s])/1000000/5",
}

type PrometheusStaticConfig struct {
	Targets []string `yaml:"targets"`
}

type PrometheusScrapeConfig struct {
	JobName       string                    `yaml:"job_name"`
	StaticConfigs []*PrometheusStaticConfig `yaml:"static_configs"`
	MetricsPath   string                    `yaml:"metrics_path"`
}

type PrometheusConfig struct {
	Global struct {
		ScrapeInterval     string `yaml:"scrape_interval"`
		EvaluationInterval string `yaml:"evaluation_interval"`
	} `yaml:"global"`
	ScrapeConfigs []*PrometheusScrapeConfig `yaml:"scrape_configs"`
}

var prometheusCmd = &cobra.Command{
	Use:   "prometheus",
	Short: "Interact with prometheus",
}

var prometheusGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a prometheus config scraping the node and print a dashboard link",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("failed to parse endpoint: %w", err)
		}
		flags := cmd.Flags()
		baseURI, _ := flags.GetString("prometheus-base-uri")
		openBrowser, _ := flags.GetBool("prometheus-open-browser")
		prometheusFile, _ := flags.GetString("prometheus-file")
		prometheusData, _ := flags.GetString("prometheus-data")
		startPrometheus, _ := flags.GetBool("prometheus-start")

		// Create Prometheus YAML
		var prometheusConfig PrometheusConfig
		prometheusConfig.Global.ScrapeInterval = "1s"
		prometheusConfig.Global.EvaluationInterval = "1s"
		prometheusConfig.ScrapeConfigs = []*PrometheusScrapeConfig{
			{
				JobName: "countervm",
				StaticConfigs: []*PrometheusStaticConfig{
					{
						Targets: []string{u.Host},
					},
				},
				MetricsPath: "/metrics",
			},
		}
		yamlData, err := yaml.Marshal(&prometheusConfig)
		if err != nil {
			return err
		}
		if err := os.WriteFile(prometheusFile, yamlData, fsModeWrite); err != nil {
			return err
		}
		utils.Outf("{{green}}wrote prometheus config:{{/}} %s\n", prometheusFile)

		dashboard := dashboardURL(baseURI, panels)
		if !startPrometheus {
			if !openBrowser {
				utils.Outf("{{orange}}pre-built dashboard:{{/}} %s\n", dashboard)

				// Emit command to run prometheus
				utils.Outf("{{green}}prometheus cmd:{{/}} /tmp/prometheus --config.file=%s --storage.tsdb.path=%s\n", prometheusFile, prometheusData)
				return nil
			}
			return browser.OpenURL(dashboard)
		}
		return runPrometheus(cmd.Context(), dashboard, openBrowser, prometheusFile, prometheusData)
	},
}

// dashboardURL links a prometheus graph page showing [exprs].
//
// We must manually encode the params because prometheus skips any panels
// that are not numerically sorted and `url.params` only sorts
// lexicographically.
func dashboardURL(baseURI string, exprs []string) string {
	dashboard := baseURI + "/graph"
	for i, panel := range exprs {
		appendChar := "&"
		if i == 0 {
			appendChar = "?"
		}
		dashboard = fmt.Sprintf("%s%sg%d.expr=%s&g%d.tab=0&g%d.step_input=1&g%d.range_input=5m", dashboard, appendChar, i, url.QueryEscape(panel), i, i, i)
	}
	return dashboard
}

// runPrometheus starts /tmp/prometheus and opens the dashboard once it had
// time to start. Attempting to exit from the terminal will gracefully stop
// the process.
func runPrometheus(ctx context.Context, dashboard string, openBrowser bool, prometheusFile, prometheusData string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, "/tmp/prometheus", "--config.file="+prometheusFile, "--storage.tsdb.path="+prometheusData)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	errChan := make(chan error, 1)
	go func() {
		select {
		case <-errChan:
			return
		case <-time.After(5 * time.Second):
			if !openBrowser {
				utils.Outf("{{orange}}pre-built dashboard:{{/}} %s\n", dashboard)
				return
			}
			utils.Outf("{{cyan}}opening dashboard{{/}}\n")
			if err := browser.OpenURL(dashboard); err != nil {
				utils.Outf("{{red}}unable to open dashboard:{{/}} %s\n", err.Error())
			}
		}
	}()

	utils.Outf("{{cyan}}starting prometheus (/tmp/prometheus) in background{{/}}\n")
	if err := cmd.Run(); err != nil {
		errChan <- err
		utils.Outf("{{orange}}prometheus exited with error:{{/}} %v\n", err)
		return err
	}
	utils.Outf("{{cyan}}prometheus exited{{/}}\n")
	return nil
}

func init() {
	flags := prometheusGenerateCmd.Flags()
	flags.String("prometheus-base-uri", "http://localhost:9090", "prometheus server location")
	flags.Bool("prometheus-open-browser", true, "open browser to prometheus dashboard")
	flags.String("prometheus-file", "/tmp/prometheus.yaml", "prometheus file location")
	flags.String("prometheus-data", fmt.Sprintf("/tmp/prometheus-%d", time.Now().Unix()), "prometheus data location")
	flags.Bool("prometheus-start", true, "start local prometheus server")
	prometheusCmd.AddCommand(prometheusGenerateCmd)
	rootCmd.AddCommand(prometheusCmd)
}
