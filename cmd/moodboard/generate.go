package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"moodboard-ai/internal/app"
	"moodboard-ai/internal/config"
	"moodboard-ai/internal/controller"
	"moodboard-ai/internal/logging"
	"moodboard-ai/internal/moodboard"
	"moodboard-ai/internal/preset"
	"moodboard-ai/internal/render"
)

type generateFlags struct {
	useCase   string
	style     string
	intensity string
	images    bool
	out       string
	asJSON    bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <theme>",
		Short: "Build a moodboard and optionally render its images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), f)
		},
	}
	cmd.Flags().StringVar(&f.useCase, "use-case", preset.DefaultUseCase, "primary use case")
	cmd.Flags().StringVar(&f.style, "style", preset.DefaultStyle, "style preset")
	cmd.Flags().StringVar(&f.intensity, "intensity", preset.DefaultIntensity, "intensity")
	cmd.Flags().BoolVar(&f.images, "images", false, "generate images for the first prompts")
	cmd.Flags().StringVar(&f.out, "out", "", "directory for palette and image files")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List use cases, styles and intensities",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			for _, group := range []struct {
				title   string
				options []preset.NamedOption
			}{
				{"Use cases", preset.UseCases()},
				{"Styles", preset.Styles()},
				{"Intensities", preset.Intensities()},
			} {
				color.New(color.Bold).Fprintln(w, group.title)
				for _, o := range group.options {
					fmt.Fprintf(w, "  %-14s %s\n", o.Key, o.Name)
				}
			}
		},
	}
}

func runGenerate(ctx context.Context, w io.Writer, theme string, f generateFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		Output:         os.Stderr,
		FilePath:       cfg.LogFile.Path,
		FileMaxSizeMB:  cfg.LogFile.MaxSizeMB,
		FileMaxBackups: cfg.LogFile.MaxBackups,
		FileMaxAgeDays: cfg.LogFile.MaxAgeDays,
	})
	defer closer.Close()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	ctrl := a.NewController()

	sel := preset.Selection{UseCase: f.useCase, Style: f.style, Intensity: f.intensity}
	v, err := ctrl.Submit(ctx, sel.Request(theme))
	if err != nil {
		if v.Message != "" {
			return errors.New(v.Message)
		}
		return err
	}

	if f.images {
		v, err = ctrl.GenerateImages(ctx)
		if err != nil && !errors.Is(err, controller.ErrImagesDisabled) {
			return err
		}
	}

	if f.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
	} else {
		printView(w, v)
	}

	if f.out == "" {
		return nil
	}
	dir := filepath.Join(f.out, uuid.NewString())
	files, err := writeArtifacts(ctx, a.HTTPClient, dir, v)
	if err != nil {
		return err
	}
	if !f.asJSON {
		for _, file := range files {
			fmt.Fprintf(w, "wrote %s\n", file)
		}
	}
	return nil
}

func printView(w io.Writer, v controller.View) {
	heading := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	heading.Fprintf(w, "Moodboard: %s\n", v.Request.Theme)
	dim.Fprintf(w, "%s · %s · %s\n\n", v.Request.UseCase, v.Request.Style, v.Request.Intensity)

	heading.Fprintln(w, "Palette")
	if len(v.Swatches) == 0 {
		fmt.Fprintln(w, v.PaletteText())
	}
	for _, s := range v.Swatches {
		if c, err := render.ParseHex(s.Hex); err == nil {
			color.BgRGB(int(c.R), int(c.G), int(c.B)).Fprint(w, "      ")
		}
		fmt.Fprintf(w, " %-9s %s\n", s.Hex, s.Label)
	}

	heading.Fprintln(w, "\nKeywords")
	fmt.Fprintln(w, v.KeywordsText())
	heading.Fprintln(w, "\nDescription")
	fmt.Fprintln(w, v.DescriptionText())
	heading.Fprintln(w, "\nPrompts")
	fmt.Fprintln(w, v.PromptsText())

	switch v.State {
	case controller.ImagesReady:
		heading.Fprintln(w, "\nImages")
		for _, img := range v.Images {
			src := img.Src()
			if img.Source != nil && img.Source.Kind == moodboard.SourceInline {
				src = "(inline " + img.Source.MimeType + ")"
			}
			fmt.Fprintf(w, "%d. %s:%s %s\n", img.PromptIndex+1, img.Provider, img.Model, src)
		}
	case controller.FallbackReady:
		color.New(color.FgYellow).Fprintln(w, "\n"+v.Message)
		for _, tile := range v.Fallback {
			fmt.Fprintln(w, tile.Tile.CSS())
		}
	}
}

// writeArtifacts saves the palette strip, remote images and fallback tiles
// under dir and returns the written paths.
func writeArtifacts(ctx context.Context, client *http.Client, dir string, v controller.View) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var files []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		files = append(files, path)
		return nil
	}

	if len(v.Swatches) > 0 {
		if strip, err := render.PaletteStrip(v.Swatches, 720, 160); err == nil {
			if err := write("palette.png", strip); err != nil {
				return files, err
			}
		}
	}

	for _, img := range v.Images {
		if img.Source == nil {
			continue
		}
		data, err := sourceBytes(ctx, client, *img.Source)
		if err != nil {
			return files, fmt.Errorf("image %d: %w", img.PromptIndex+1, err)
		}
		if err := write(fmt.Sprintf("image-%d.png", img.PromptIndex+1), data); err != nil {
			return files, err
		}
	}

	for i, tile := range v.Fallback {
		data, err := render.TilePNG(*tile.Tile, render.DefaultTileSize)
		if err != nil {
			return files, err
		}
		if err := write(fmt.Sprintf("tile-%d.png", i+1), data); err != nil {
			return files, err
		}
	}

	return files, nil
}

func sourceBytes(ctx context.Context, client *http.Client, src moodboard.Source) ([]byte, error) {
	if src.Kind == moodboard.SourceInline {
		return src.Bytes()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download %s: %s", src.URL, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
