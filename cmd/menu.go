package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"predict-go/internal/service"
)

const menuText = `
1. Predict next word
2. Spell-check a sentence
3. Protect a word from correction
4. Show model statistics
0. Exit
Choose an option: `

// runMenu reads commands from in until EOF or exit
func runMenu(ctx context.Context, in io.Reader, out io.Writer, ls *service.LanguageService) error {
	scanner := bufio.NewScanner(in)

	prompt := func(text string) (string, bool) {
		fmt.Fprint(out, text)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		choice, ok := prompt(menuText)
		if !ok {
			return scanner.Err()
		}

		switch choice {
		case "1":
			phrase, ok := prompt("Enter a phrase: ")
			if !ok {
				return scanner.Err()
			}
			prediction, err := ls.Predict(phrase, 5)
			if err != nil {
				return err
			}
			if prediction.Context.Len() == 0 {
				fmt.Fprintln(out, "Please enter at least one word.")
				continue
			}
			fmt.Fprintf(out, "Using a %d-word context: %q\n", prediction.Context.Len(), prediction.Context.String())
			if len(prediction.Candidates) == 0 {
				fmt.Fprintln(out, "No predictions found for this context in the training data.")
				continue
			}
			fmt.Fprintf(out, "Top %d predictions:\n", len(prediction.Candidates))
			for i, f := range prediction.Candidates {
				fmt.Fprintf(out, "  %d. %s (%d)\n", i+1, f.Token, f.Count)
			}

		case "2":
			sentence, ok := prompt("Enter a sentence: ")
			if !ok {
				return scanner.Err()
			}
			result, err := ls.Correct(sentence)
			if errors.Is(err, service.ErrCorrectionUnavailable) {
				fmt.Fprintln(out, "Spell-checking needs a word-level model.")
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Corrected: %s\n", result.Corrected)

		case "3":
			word, ok := prompt("Enter a word: ")
			if !ok {
				return scanner.Err()
			}
			if err := ls.AddKnownWord(ctx, word); err != nil {
				fmt.Fprintf(out, "Could not protect %q: %v\n", word, err)
				continue
			}
			fmt.Fprintf(out, "%q will not be corrected.\n", word)

		case "4":
			stats := ls.Stats()
			fmt.Fprintf(out, "Order: %d, granularity: %s\n", stats.Store.MaxOrder, stats.Granularity)
			fmt.Fprintf(out, "Training tokens: %d, vocabulary: %d\n", stats.Store.TotalTokens, stats.Store.VocabularySize)
			if stats.Evaluation != nil {
				fmt.Fprintf(out, "Entropy: %.4f bits/token, perplexity: %.2f\n", stats.Evaluation.Entropy, stats.Evaluation.Perplexity)
			}

		case "0", "q", "exit":
			fmt.Fprintln(out, "Goodbye.")
			return nil

		default:
			fmt.Fprintln(out, "Invalid option.")
		}
	}
}
