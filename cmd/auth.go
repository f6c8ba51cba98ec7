package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/critree/internal/llm"
)

var knownProviders = []string{
	llm.ProviderAnthropic,
	llm.ProviderOpenAI,
	llm.ProviderGemini,
	llm.ProviderOpenRouter,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage provider API keys in the config file",
}

var authSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store an API key read from stdin",
	Example: `  echo "$KEY" | critree auth set-key --provider openai
  critree auth set-key --provider anthropic --use`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider == "" {
			return errors.New("--provider is required")
		}

		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Paste the %s API key and press Enter: ", provider)
		}
		key, err := readKey(cmd.InOrStdin())
		if err != nil {
			return err
		}

		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.SetKey(provider, key); err != nil {
			return err
		}
		if use, _ := cmd.Flags().GetBool("use"); use {
			cfg.LLM.Provider = provider
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s key to %s\n", provider, path)
		return nil
	},
}

// readKey returns the first non-empty line of r.
func readKey(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if key := strings.TrimSpace(sc.Text()); key != "" {
			return key, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	return "", errors.New("no key given on stdin")
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where each provider's key comes from",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		llmCfg, err := cfg.LLMConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file: %s\n", path)
		fmt.Fprintf(out, "Selected:    %s\n\n", llmCfg.Provider)

		for _, p := range knownProviders {
			fmt.Fprintf(out, "%-11s %s\n", p, keySources(p, cfg.Key(p)))
		}

		fmt.Fprintln(out)
		if err := llmCfg.Validate(); err != nil {
			fmt.Fprintln(out, color.YellowString("%v", err))
			return nil
		}
		fmt.Fprintln(out, color.GreenString("Ready: diagnoses will use %s.", llmCfg.Provider))
		return nil
	},
}

func keySources(provider, fileKey string) string {
	var found []string
	if fileKey != "" {
		found = append(found, "config file")
	}
	if os.Getenv(llm.KeyEnvVar(provider)) != "" {
		found = append(found, llm.KeyEnvVar(provider))
	}
	if env := llm.StandardKeyEnvVar(provider); os.Getenv(env) != "" {
		found = append(found, env)
	}
	if len(found) == 0 {
		return color.New(color.Faint).Sprint("no key")
	}
	return color.GreenString("✓ ") + strings.Join(found, ", ")
}

func init() {
	authSetKeyCmd.Flags().StringP("provider", "p", "", "Provider: anthropic, openai, gemini or openrouter")
	authSetKeyCmd.Flags().Bool("use", false, "Also select this provider in the config file")

	authCmd.AddCommand(authSetKeyCmd)
	authCmd.AddCommand(authStatusCmd)
}
