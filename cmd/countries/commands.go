package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zoobzio/stencil"
	"github.com/zoobzio/stencil/bson"
	"github.com/zoobzio/stencil/examples/countries"
	"github.com/zoobzio/stencil/internal/config"
	"github.com/zoobzio/stencil/internal/fetch"
	"github.com/zoobzio/stencil/internal/logging"
	"github.com/zoobzio/stencil/json"
	"github.com/zoobzio/stencil/msgpack"
	"github.com/zoobzio/stencil/yaml"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [code...]",
	Short: "Fetch countries by code and print them",
	Long:  "Fetch the given country codes, or the configured ones when none are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, stop, err := setup()
		if err != nil {
			return err
		}
		defer stop()

		codes := cfg.Codes
		if len(args) > 0 {
			codes = args
		}

		client := fetch.New(fetch.Options{
			BaseURL:       cfg.BaseURL,
			Timeout:       cfg.Timeout,
			RatePerSecond: cfg.RatePerSecond,
		}, log)

		start := time.Now()
		bags, err := client.Countries(cmd.Context(), codes)
		if err != nil {
			return err
		}

		mapped := make([]*countries.Country, 0, len(bags))
		for i, bag := range bags {
			c, err := countries.NewCountryMapper(bag).MapCountry()
			if err != nil {
				return fmt.Errorf("map %s: %w", codes[i], err)
			}
			mapped = append(mapped, c)
		}
		log.Info().Int("countries", len(mapped)).Dur("took", time.Since(start)).Msg("fetched and mapped")

		return write(cmd.OutOrStdout(), cfg.Format, mapped)
	},
}

var convertFrom string

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Map countries from a file and print them",
	Long:  "Read one country or a list of countries from FILE, map them and print them in the configured format.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, stop, err := setup()
		if err != nil {
			return err
		}
		defer stop()

		in, err := codecFor(convertFrom)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		decoded, err := in.Decode(data)
		if err != nil {
			return err
		}

		// documents written by the bson format wrap the list
		if bag, ok := decoded.(*stencil.Bag); ok {
			if list, ok := bag.Get("countries"); ok {
				decoded = list
			}
		}

		var mapped []*countries.Country
		if _, ok := decoded.([]any); ok {
			mapped, err = countries.MapCountries(decoded, time.Now)
		} else {
			var c *countries.Country
			c, err = countries.NewCountryMapper(decoded).MapCountry()
			mapped = []*countries.Country{c}
		}
		if err != nil {
			return err
		}
		log.Info().Str("file", args[0]).Int("countries", len(mapped)).Msg("converted")

		return write(cmd.OutOrStdout(), cfg.Format, mapped)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "json", "input format: json, yaml, msgpack or bson")
}

// setup loads configuration and builds the run logger.
func setup() (*config.Config, zerolog.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	log := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}).With().Str("run_id", uuid.NewString()).Logger()

	stop := logging.Observe(log)
	return cfg, log, stop, nil
}

// write collects the mapped countries and encodes them with the named codec.
func write(w io.Writer, format string, mapped []*countries.Country) error {
	c, err := codecFor(format)
	if err != nil {
		return err
	}
	bags, err := stencil.CollectList(mapped)
	if err != nil {
		return err
	}

	var out []byte
	if format == "bson" {
		// BSON has no top-level array
		doc := stencil.NewBag()
		items := make([]any, len(bags))
		for i, b := range bags {
			items[i] = b
		}
		doc.Set("countries", items)
		out, err = c.Encode(doc)
	} else {
		out, err = c.Encode(bags)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return err
	}
	if format == "json" {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

func codecFor(name string) (stencil.Codec, error) {
	switch name {
	case "json":
		return json.NewIndent("  "), nil
	case "yaml":
		return yaml.New(), nil
	case "msgpack":
		return msgpack.New(), nil
	case "bson":
		return bson.New(), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
