package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/radif/uploader/internal/config"
	"github.com/radif/uploader/internal/identifier"
	"github.com/radif/uploader/internal/logger"
	"github.com/radif/uploader/internal/middleware"
	"github.com/radif/uploader/internal/upload"
)

var errUploadFailed = errors.New("upload failed")

type rootFlags struct {
	scheme     string
	host       string
	port       int
	prefix     string
	idFormat   string
	permissive bool
	timeout    time.Duration
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "upload [flags] <file>...",
		Short: "Upload files to the backend as base64 data URLs",
		Long: `Upload reads each file, encodes it as a base64 data URL and POSTs
{"name": ..., "data": ...} to <scheme>://<host>:<port><prefix><id>,
where <id> is freshly generated for every file.

Defaults come from UPLOAD_* environment variables (or a .env file);
flags override them.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			applyFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			lg, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.SetDefault(lg)
			defer logger.SetDefault(nil)

			u, err := newUploader(cfg)
			if err != nil {
				return err
			}
			logger.Infof("uploading %d file(s) with %s policy", len(args), u.Policy())

			for _, path := range args {
				resp, err := u.UploadFile(cmd.Context(), path)
				if err != nil {
					report(errOut, path, err)
					return errUploadFailed
				}
				fmt.Fprintln(out, string(resp.Body))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.scheme, "scheme", "", "backend scheme, http or https (env UPLOAD_SCHEME)")
	f.StringVar(&flags.host, "host", "", "backend host (env UPLOAD_HOST)")
	f.IntVar(&flags.port, "port", 0, "backend port (env UPLOAD_PORT)")
	f.StringVar(&flags.prefix, "prefix", "", "URL path prefix (env UPLOAD_PATH_PREFIX)")
	f.StringVar(&flags.idFormat, "id-format", "", "request identifier format: pattern, uuid or xid (env UPLOAD_ID_FORMAT)")
	f.BoolVar(&flags.permissive, "permissive", false, "return error bodies instead of failing on non-2xx (env UPLOAD_POLICY)")
	f.DurationVar(&flags.timeout, "timeout", 0, "HTTP client timeout, 0 for none (env UPLOAD_TIMEOUT)")

	cmd.AddCommand(versionCmd(out))
	return cmd
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags rootFlags) {
	f := cmd.Flags()
	if f.Changed("scheme") {
		cfg.Scheme = flags.scheme
	}
	if f.Changed("host") {
		cfg.Host = flags.host
	}
	if f.Changed("port") {
		cfg.Port = flags.port
	}
	if f.Changed("prefix") {
		cfg.PathPrefix = flags.prefix
	}
	if f.Changed("id-format") {
		cfg.IDFormat = flags.idFormat
	}
	if f.Changed("permissive") {
		cfg.Policy = "strict"
		if flags.permissive {
			cfg.Policy = "permissive"
		}
	}
	if f.Changed("timeout") {
		cfg.Timeout = flags.timeout
	}
}

func newUploader(cfg *config.Config) (*upload.Uploader, error) {
	ids, err := identifier.ByName(cfg.IDFormat)
	if err != nil {
		return nil, err
	}
	policy, err := upload.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Transport: middleware.Logger(http.DefaultTransport),
		Timeout:   cfg.Timeout,
	}
	return upload.New(cfg.Endpoint(),
		upload.WithHTTPClient(client),
		upload.WithGenerator(ids),
		upload.WithPolicy(policy),
	)
}

// report prints a failed upload with its detail.
func report(w io.Writer, path string, err error) {
	e, ok := upload.AsError(err)
	if !ok {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}
	detail, mErr := json.Marshal(e.Detail)
	if mErr != nil {
		detail = []byte(fmt.Sprintf("%v", e.Detail))
	}
	if e.Status != 0 {
		fmt.Fprintf(w, "%s: %s (status %d)\ndetail: %s\n", path, e.Message, e.Status, detail)
		return
	}
	fmt.Fprintf(w, "%s: %s\ndetail: %s\n", path, e.Message, detail)
}
