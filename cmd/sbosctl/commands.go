package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sbos/internal/capability"
	jwttoken "sbos/internal/jwt_token"
)

type globalFlags struct {
	server     string
	token      string
	signingKey string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "sbosctl",
		Short:         "Administer a running sbos engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.server, "server", envOr("SBOS_SERVER", "http://localhost:8083"), "engine base URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("SBOS_ADMIN_TOKEN"), "admin bearer token")
	root.PersistentFlags().StringVar(&g.signingKey, "signing-key", os.Getenv("SBOS_ADMIN_JWT_KEY"), "mint a short-lived admin token from this key when --token is empty")

	root.AddCommand(
		simpleCmd(g, "health", "Show liveness, risk flags and monitor state", http.MethodGet, "/health", nil),
		simpleCmd(g, "reload", "Re-read configuration and recompute capabilities", http.MethodPost, "/admin/reload", nil),
		monitorCmd(g),
		registerCmd(g),
		stopCmd(g),
		simpleCmd(g, "list", "List running app instances", http.MethodGet, "/admin/app/list", nil),
		promoteCmd(g),
		reportCmd(g, "txlog", "Show recent write and read decisions", "/admin/txlog"),
		reportCmd(g, "shadow-log", "Show recent shadow findings", "/admin/shadow_log"),
		simpleCmd(g, "shadow-stats", "Show shadow failure counts per validator", http.MethodGet, "/admin/shadow_stats", nil),
		tokenCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (g *globalFlags) client() (*apiClient, error) {
	token := g.token
	if token == "" && g.signingKey != "" {
		t, err := jwttoken.NewJWTService(g.signingKey, jwttoken.Issuer).GenerateToken("sbosctl", jwttoken.RoleAdmin, 5*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("mint admin token: %w", err)
		}
		token = t
	}
	return newAPIClient(g.server, token), nil
}

func (g *globalFlags) call(cmd *cobra.Command, method, path string, query url.Values, body any) error {
	c, err := g.client()
	if err != nil {
		return err
	}
	out, err := c.do(cmd.Context(), method, path, query, body)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func simpleCmd(g *globalFlags, use, short, method, path string, query url.Values) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.call(cmd, method, path, query, nil)
		},
	}
}

func monitorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "monitor on|off",
		Short:     "Enable or pause the policy monitor",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enable bool
			switch args[0] {
			case "on":
				enable = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return g.call(cmd, http.MethodPost, "/admin/monitor", url.Values{"enable": {strconv.FormatBool(enable)}}, nil)
		},
	}
}

func registerCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register MANIFEST",
		Short: "Register an app instance from a YAML or JSON manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := readManifest(args[0])
			if err != nil {
				return err
			}
			return g.call(cmd, http.MethodPost, "/admin/app/register", nil, m)
		},
	}
}

// readManifest accepts YAML, which also covers JSON documents.
func readManifest(path string) (capability.Manifest, error) {
	var m capability.Manifest
	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

func stopCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop INSTANCE_ID",
		Short: "Stop an app instance and revoke its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.call(cmd, http.MethodPost, "/admin/app/stop", url.Values{"aid": {args[0]}}, nil)
		},
	}
}

func promoteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "promote CLASS",
		Short: "Append a class's shadow validators to its enforced chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.call(cmd, http.MethodPost, "/admin/promote_shadow", url.Values{"resource_class": {args[0]}}, nil)
		},
	}
}

func reportCmd(g *globalFlags, use, short, path string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var q url.Values
			if limit > 0 {
				q = url.Values{"limit": {strconv.Itoa(limit)}}
			}
			return g.call(cmd, http.MethodGet, path, q, nil)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (server default when 0)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		key     string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key == "" {
				return fmt.Errorf("--key or SBOS_ADMIN_JWT_KEY is required")
			}
			t, err := jwttoken.NewJWTService(key, jwttoken.Issuer).GenerateToken(subject, jwttoken.RoleAdmin, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t)
			return err
		},
	}
	cmd.Flags().StringVar(&key, "key", os.Getenv("SBOS_ADMIN_JWT_KEY"), "HS256 signing key")
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
