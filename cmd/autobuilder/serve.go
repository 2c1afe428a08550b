package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/discovery"
	"github.com/agenticauto/autobuilder/internal/logging"
	mcpserver "github.com/agenticauto/autobuilder/internal/mcp"
	"github.com/agenticauto/autobuilder/internal/sandbox"
)

var (
	scanTimeout time.Duration

	sandboxHost        string
	sandboxPort        int
	sandboxAdvertise   bool
	sandboxInstance    string
	sandboxCert        string
	sandboxKey         string
	sandboxRequireAuth bool
	sandboxLimit       int
)

func init() {
	discoverCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to browse for backends")

	sandboxCmd.Flags().StringVar(&sandboxHost, "host", "", "Interface to bind (default all)")
	sandboxCmd.Flags().IntVarP(&sandboxPort, "port", "p", discovery.DefaultPort, "Port to listen on (0 picks a free port)")
	sandboxCmd.Flags().BoolVar(&sandboxAdvertise, "advertise", false, "Announce the sandbox over mDNS")
	sandboxCmd.Flags().StringVar(&sandboxInstance, "instance", "", "mDNS instance name (default autobuilder-sandbox-<hostname>)")
	sandboxCmd.Flags().StringVar(&sandboxCert, "cert", "", "TLS certificate file")
	sandboxCmd.Flags().StringVar(&sandboxKey, "key", "", "TLS private key file")
	sandboxCmd.Flags().BoolVar(&sandboxRequireAuth, "require-auth", false, "Require a session token on automation endpoints")
	sandboxCmd.Flags().IntVar(&sandboxLimit, "limit", automation.FreeTierLimit, "Hosted automation limit")

	rootCmd.AddCommand(discoverCmd, sandboxCmd, mcpCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find backends on the local network",
	Long: `Browse mDNS for ` + discovery.ServiceType + ` services and list their URLs.
Pass a URL to --api-url to use one.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Timeout = scanTimeout
	backends, err := scanner.ScanForBackendsWithContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if s.jsonOutput() {
		type entry struct {
			Instance string `json:"instance"`
			URL      string `json:"url"`
			Version  string `json:"version,omitempty"`
		}
		out := make([]entry, 0, len(backends))
		for _, b := range backends {
			out = append(out, entry{Instance: b.Instance, URL: b.BaseURL(), Version: b.Version()})
		}
		return s.printer.PrintJSON(out)
	}

	rows := make([][]string, 0, len(backends))
	for _, b := range backends {
		rows = append(rows, []string{b.Instance, b.BaseURL(), b.Version()})
	}
	s.printer.PrintTable([]string{"Instance", "URL", "Version"}, rows,
		fmt.Sprintf("No backends found in %s.", scanTimeout))
	return nil
}

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local in-memory backend",
	Long: `Serve the automation builder API from memory for offline use and
testing. Data is lost on exit.`,
	Example: `  autobuilder sandbox --port 8000 --advertise
  autobuilder --api-url http://localhost:8000 list`,
	Args: cobra.NoArgs,
	RunE: runSandbox,
}

func runSandbox(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	// a server is expected to log even when nothing asked for it
	if s.settings.LogLevel == "" && os.Getenv(logging.LogLevelEnvVar) == "" {
		if err := logging.Initialize("info", s.settings.LogFile); err != nil {
			return err
		}
	}
	defer logging.Sync()

	server, err := sandbox.New(&sandbox.Config{
		Host:        sandboxHost,
		Port:        sandboxPort,
		CertPath:    sandboxCert,
		KeyPath:     sandboxKey,
		Advertise:   sandboxAdvertise,
		Instance:    sandboxInstance,
		HostedLimit: sandboxLimit,
		RequireAuth: sandboxRequireAuth,
	})
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Sandbox listening on %s\n", server.BaseURL())
	return server.Start(cmd.Context())
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve automation tools over MCP on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing workflow
design, script generation and hosted automation tools, backed by
--api-url. Logs go to --log-file or stderr, never stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd, "")
		if err != nil {
			return err
		}
		defer logging.Sync()
		logging.Info("Starting MCP server", zap.String("api_url", s.client.BaseURL))
		return mcpserver.RunServer(cmd.Context(), s.client)
	},
}
