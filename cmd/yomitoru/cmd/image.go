package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yomitoru/yomitoru/internal/pipeline"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image [file]",
	Short: "Translate Japanese text in a local image",
	Long: `Detect Japanese text in a local image file and translate it into
English. With --ruby, each detected fragment is additionally translated
on its own for furigana-style annotation.

Examples:
  yomitoru image page.png
  yomitoru image page.jpg --ruby
  yomitoru image page.png --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rubyMode, _ := cmd.Flags().GetBool("ruby")
		format, _ := cmd.Flags().GetString("format")
		if format != "json" && format != "text" {
			return fmt.Errorf("unsupported format: %s (use json or text)", format)
		}

		path := args[0]
		mimeType, err := imageMIMEType(path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if int64(len(data)) > cfg.Server.MaxUploadMB*1024*1024 {
			return fmt.Errorf("%s exceeds the %dMB size limit", path, cfg.Server.MaxUploadMB)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		pl, cleanup, err := buildPipeline(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := pl.Run(ctx, pipeline.Request{
			Image:    data,
			MIMEType: mimeType,
			RubyMode: rubyMode,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		fmt.Fprintln(out, "Japanese:")
		fmt.Fprintln(out, result.JapaneseText)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "English:")
		fmt.Fprintln(out, result.EnglishText)

		if rubyMode && len(result.TextBoxes) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Fragments:")
			for _, box := range result.TextBoxes {
				marker := ""
				if box.TranslationFailed {
					marker = " (untranslated)"
				}
				fmt.Fprintf(out, "  %s -> %s%s\n", box.Text, box.TranslatedText, marker)
			}
		}

		return nil
	},
}

// imageMIMEType maps the file extension to the MIME allow-list.
func imageMIMEType(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s (only JPG and PNG are supported)", path)
	}
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.Flags().Bool("ruby", false, "translate each fragment individually for furigana-style annotation")
	imageCmd.Flags().StringP("format", "f", "text", "output format (json, text)")
}
