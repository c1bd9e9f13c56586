package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatbot-backend/internal/chatui"
	"chatbot-backend/internal/client"
	"chatbot-backend/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("server", "http://localhost:8000")
	v.SetDefault("provider", config.ProviderGoogle)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Terminal chat against the relay server",
		Long: `chat talks to a running relay server and streams replies into the terminal.

Examples:
  chat                                  # google provider on localhost:8000
  chat --provider ollama
  CHAT_SERVER=http://relay:8000 chat`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := v.GetString("provider")
			if provider != config.ProviderGoogle && provider != config.ProviderOllama {
				return fmt.Errorf("unknown provider %q", provider)
			}

			c := client.New(v.GetString("server"), nil)
			p := tea.NewProgram(chatui.New(c, provider), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().String("server", v.GetString("server"), "Relay server base URL")
	cmd.Flags().String("provider", v.GetString("provider"), "Initial provider (google or ollama)")
	v.BindPFlag("server", cmd.Flags().Lookup("server"))
	v.BindPFlag("provider", cmd.Flags().Lookup("provider"))

	return cmd
}
