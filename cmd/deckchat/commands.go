package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgallion1/deckchat/internal/chat"
	"github.com/dgallion1/deckchat/internal/config"
	"github.com/dgallion1/deckchat/internal/parser"
	"github.com/dgallion1/deckchat/internal/selector"
	"github.com/dgallion1/deckchat/internal/session"
	"github.com/spf13/cobra"
)

func extractText(path string) (string, error) {
	data, err := readDocument(path)
	if err != nil {
		return "", err
	}
	text, err := parser.NewExtractor(logger()).Extract(data, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%s: no text extracted", path)
	}
	return text, nil
}

func newExtractCmd() *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Print the extracted text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractText(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if stats {
				info := session.Describe(filepath.Base(args[0]), text)
				fmt.Fprintf(out, "characters=%d slides=%d large=%t\n", info.Characters, info.Slides, info.Large)
				return nil
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "print document statistics instead of the text")
	return cmd
}

func selectorFromConfig(cfg config.Config) *selector.Selector {
	return selector.New(selector.Config{
		TokenBudget:    cfg.ContextTokenBudget,
		CharsPerToken:  cfg.ContextCharsPerToken,
		VerbatimSlides: cfg.ContextVerbatimSlides,
	})
}

func newSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select FILE QUERY",
		Short: "Print the context that would be sent to the chat model for QUERY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := extractText(args[0])
			if err != nil {
				return err
			}
			sel := selectorFromConfig(config.Load())
			fmt.Fprintln(cmd.OutOrStdout(), sel.Select(text, args[1]))
			return nil
		},
	}
}

func newAskCmd() *cobra.Command {
	var apiKey, model string
	cmd := &cobra.Command{
		Use:   "ask FILE QUESTION",
		Short: "Ask one question about a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			text, err := extractText(args[0])
			if err != nil {
				return err
			}

			sess := session.New(cfg.OpenAIAPIKey)
			sess.SetCredential(apiKey)
			credential, _ := sess.Credential()

			if model == "" {
				model = cfg.OpenAIModel
			}
			client := chat.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.ChatTimeout)
			defer client.Close()
			orch := chat.NewOrchestrator(client, selectorFromConfig(cfg), chat.Options{
				Model:       model,
				MaxTokens:   cfg.ChatMaxTokens,
				Temperature: float32(cfg.ChatTemperature),
				Timeout:     cfg.ChatTimeout,
				MaxRetries:  cfg.ChatMaxRetries,
			}, logger())

			reply, err := orch.Complete(context.Background(), credential, args[1], text)
			if err != nil {
				if errors.Is(err, chat.ErrCredentialInvalid) {
					return fmt.Errorf("%w (set OPENAI_API_KEY or pass --api-key)", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key; overrides OPENAI_API_KEY")
	cmd.Flags().StringVar(&model, "model", "", "chat model (default from OPENAI_MODEL)")
	return cmd
}
