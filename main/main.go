package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/goramses"
	"github.com/phil-mansfield/goramses/io"
)

type FileGroup struct {
	log, prof *os.File
}

// Close flushes the profile and closes both files. The log output is reset
// to stderr first so later messages aren't lost.
func (fg *FileGroup) Close() {
	if fg.prof != nil {
		pprof.StopCPUProfile()
		if err := fg.prof.Close(); err != nil {
			log.Error(err.Error())
		}
	}

	if fg.log != nil {
		log.SetOutput(os.Stderr)
		if err := fg.log.Close(); err != nil {
			log.Error(err.Error())
		}
	}
}

func main() {
	var project, exampleConfig string
	flag.StringVar(
		&project, "Project", "",
		"Configuration file for a projection.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Project'.",
	)
	flag.Parse()

	switch {
	case exampleConfig != "" && project != "":
		log.Fatal("Only one of 'Project' and 'ExampleConfig' may be set.")
	case exampleConfig != "":
		if exampleConfig != "Project" {
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only " +
					"recognized argument is 'Project'.",
			)
		}
		fmt.Println(io.ExampleProjectFile)
	case project != "":
		wrap, err := io.ReadProjectConfig(project)
		if err != nil {
			log.Fatal(err.Error())
		}
		if err := projectMain(wrap); err != nil {
			log.Fatal(err.Error())
		}
	default:
		log.Fatal("Must set either 'Project' or 'ExampleConfig'.")
	}
}

// projectMain runs the projection described by wrap. Errors are returned
// rather than fatal so that the log and profile files are always closed.
func projectMain(wrap *io.ProjectWrapper) error {
	con := &wrap.Project
	fg, err := setupIO(con)
	if err != nil {
		return err
	}
	defer fg.Close()

	opts, err := con.Options()
	if err != nil {
		return err
	}
	opts = append(opts,
		goramses.Logger(log.StandardLogger()),
		goramses.Progress(func(done, total int) {
			log.Infof("Finished %d of %d maps.", done, total)
		}),
	)

	log.WithFields(log.Fields{
		"input": con.Input, "variables": con.Variable,
	}).Info("Reading table.")

	var res *goramses.Result
	if con.IsCells() {
		tab, err := io.ReadCellTable(con.Input, &wrap.Info, con.Field)
		if err != nil {
			return err
		}
		log.Infof("Read %d cells.", tab.Len())
		if res, err = goramses.Project(tab, con.Variable, opts...); err != nil {
			return err
		}
	} else {
		tab, err := io.ReadParticleTable(
			con.Input, &wrap.Info, con.Field, con.ParticleLevels,
		)
		if err != nil {
			return err
		}
		log.Infof("Read %d particles.", tab.Len())
		res, err = goramses.ProjectParticles(tab, con.Variable, opts...)
		if err != nil {
			return err
		}
	}

	summarize(res)
	return nil
}

func setupIO(con *io.ProjectConfig) (*FileGroup, error) {
	fg := &FileGroup{}
	var err error

	if con.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if con.ValidLogFile() {
		if fg.log, err = os.Create(con.LogFile); err != nil {
			return nil, err
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		if fg.prof, err = os.Create(con.ProfileFile); err != nil {
			fg.Close()
			return nil, err
		}
		if err = pprof.StartCPUProfile(fg.prof); err != nil {
			fg.prof.Close()
			fg.prof = nil
			fg.Close()
			return nil, err
		}
	}

	return fg, nil
}

func summarize(res *goramses.Result) {
	shape := res.Resolution()
	log.WithFields(log.Fields{
		"direction": res.Direction(),
		"pixels":    fmt.Sprintf("%dx%d", shape[0], shape[1]),
		"extent":    res.Extent(),
		"lmin":      res.Lmin(),
		"lmax":      res.Lmax(),
	}).Info("Projection finished.")

	for _, name := range res.Names() {
		m := res.Map(name)
		fields := log.Fields{
			"unit":   m.Unit(),
			"mode":   m.Mode(),
			"level":  m.MaxLevel(),
			"total":  m.Total(),
			"finite": m.FiniteFraction(),
		}
		if min, max, ok := m.Bounds(); ok {
			fields["min"], fields["max"] = min, max
		}
		log.WithFields(fields).Infof("Map '%s'.", name)
	}
}
