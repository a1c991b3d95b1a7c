package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"talentscout/internal/ai"
	"talentscout/internal/common"
	"talentscout/internal/config"
	"talentscout/internal/engine"
	"talentscout/internal/store"
	"talentscout/internal/types"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run an interactive screening conversation in the terminal",
	Long: `Run a candidate screening conversation directly in the terminal.
The assistant asks questions, extracts candidate details from your answers,
and saves the collected record when the conversation ends.`,
	RunE: runChat,
}

var chatShowRecord bool

func init() {
	chatCmd.Flags().BoolVar(&chatShowRecord, "show-record", false, "Print the collected candidate data after each turn")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	aiService, err := ai.NewService(&cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() {
		if closeErr := aiService.Close(); closeErr != nil {
			logger.Warn("Failed to close AI service", "error", closeErr)
		}
	}()

	eng := engine.New(aiService, logger, engine.WithSystemPrompt(func() string {
		if override := config.SystemPromptOverride(); override != "" {
			return override
		}
		return engine.DefaultSystemPrompt
	}))

	candidateStore := store.New(&cfg.Store, logger)

	fmt.Println("TalentScout screening assistant. Type your message and press Enter.")
	fmt.Println("Say goodbye at any point to finish the conversation.")
	fmt.Println()

	var history []types.ConversationTurn
	record := types.CandidateRecord{}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return ctx.Err()
		default:
		}

		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if err := common.ValidateMessage(message, cfg.App.MaxMessageLength); err != nil {
			fmt.Printf("assistant> Your message could not be processed: %v\n\n", err)
			continue
		}

		result := eng.Respond(ctx, message, history, record)

		history = append(history,
			types.ConversationTurn{Role: types.RoleUser, Content: message},
			types.ConversationTurn{Role: types.RoleAssistant, Content: result.Message},
		)
		record = result.CandidateData

		fmt.Printf("assistant> %s\n\n", result.Message)

		if chatShowRecord && len(record) > 0 {
			printRecord(record)
		}

		if result.ConversationEnded {
			if err := candidateStore.Append(ctx, record); err != nil {
				logger.LogError(err, "Failed to persist candidate record")
				fmt.Fprintln(os.Stderr, "Warning: candidate record could not be saved.")
			} else if len(record) > 0 {
				fmt.Printf("Candidate record saved to %s\n", cfg.Store.Path)
			}
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func printRecord(record types.CandidateRecord) {
	fmt.Println("--- collected so far ---")
	for _, field := range record.Fields() {
		fmt.Printf("  %s: %s\n", field, record[field])
	}
	fmt.Println("------------------------")
	fmt.Println()
}
