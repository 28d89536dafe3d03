package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danielpatrickdp/histogrammer/go-engine/internal/replay"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/ringitem"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/session"
	"github.com/danielpatrickdp/histogrammer/go-engine/internal/setup"
)

// #region main

func main() {
	eventsPath := flag.String("events", "", "record file to cut the fixture from")
	setupPath := flag.String("setup", "", "setup YAML embedded in the fixture")
	maxEvents := flag.Int("max", 100, "number of leading data records to export")
	description := flag.String("description", "", "fixture description")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *eventsPath == "" || *setupPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --events path/to/run.evt --setup setup.yaml --out path/to/fixture.json [--max N]")
		os.Exit(2)
	}

	if err := run(*eventsPath, *setupPath, *maxEvents, *description, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(eventsPath, setupPath string, maxEvents int, description, outPath string) error {
	sf, err := setup.Load(setupPath)
	if err != nil {
		return err
	}

	in, err := os.Open(eventsPath)
	if err != nil {
		return fmt.Errorf("open events: %w", err)
	}
	defer in.Close()

	fixture := &replay.Fixture{Description: description, Setup: *sf}
	if fixture.Description == "" {
		fixture.Description = fmt.Sprintf("first %d events of %s", maxEvents, eventsPath)
	}
	if err := extract(ringitem.NewReader(in), fixture, maxEvents); err != nil {
		return err
	}
	if len(fixture.Events) == 0 {
		return fmt.Errorf("no data records found in %s", eventsPath)
	}
	fmt.Printf("Found %d parameter definitions, %d variables, %d events\n",
		len(fixture.Definitions), len(fixture.Variables), len(fixture.Events))

	// Expectations come from running the fixture exactly as it will be replayed.
	sess, err := session.New(session.Config{Source: "fixture-export"}, nil, nil)
	if err != nil {
		return err
	}
	res, err := replay.RunFixture(context.Background(), fixture, sess)
	if err != nil {
		return fmt.Errorf("compute expectations: %w", err)
	}
	fixture.ExpectedSums = res.Sums

	if err := fixture.Save(outPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d spectra)\n", outPath, len(res.Sums))
	return nil
}

// extract collects definitions and variables from the whole stream and the
// first maxEvents data records. Later definitions of a record id win.
func extract(rd *ringitem.Reader, f *replay.Fixture, maxEvents int) error {
	defIndex := make(map[uint32]int)
	varIndex := make(map[string]int)
	for {
		it, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch it.Type {
		case ringitem.TypeParameterDefinitions:
			defs, err := ringitem.DecodeParameterDefinitions(it)
			if err != nil {
				return err
			}
			for _, d := range defs {
				if i, ok := defIndex[d.ID]; ok {
					f.Definitions[i] = d
					continue
				}
				defIndex[d.ID] = len(f.Definitions)
				f.Definitions = append(f.Definitions, d)
			}
		case ringitem.TypeVariableValues:
			vars, err := ringitem.DecodeVariableValues(it)
			if err != nil {
				return err
			}
			for _, v := range vars {
				if i, ok := varIndex[v.Name]; ok {
					f.Variables[i] = v
					continue
				}
				varIndex[v.Name] = len(f.Variables)
				f.Variables = append(f.Variables, v)
			}
		case ringitem.TypeParameterData:
			if len(f.Events) >= maxEvents {
				continue
			}
			d, err := ringitem.DecodeParameterData(it)
			if err != nil {
				return err
			}
			f.Events = append(f.Events, d)
		}
	}
}

// #endregion extract
