package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/mmsf-tools/sfsprite"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const defaultDB = "sfsprite.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func main() {
	app := cli.NewApp()

	app.Name = "sfsprite"
	app.Usage = "Mega Man Star Force sprite archive utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SFSPRITE_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalogue database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Summarise an archive",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := sfsprite.Inspect(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := yaml.Marshal(s)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Print(string(b))

				if s.Error != "" {
					return cli.NewExitError(fmt.Sprintf("error %d: %s", s.ErrorID, s.Error), 2)
				}

				return nil
			},
		},
		{
			Name:        "dump",
			Usage:       "Dump the structure of an archive as YAML",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				doc, err := sfsprite.Load(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				b, err := sfsprite.MarshalYAML(doc)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				fmt.Print(string(b))

				return nil
			},
		},
		{
			Name:        "rewrite",
			Usage:       "Decode an archive and encode it again",
			Description: "",
			ArgsUsage:   "SOURCE DESTINATION",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := sfsprite.Rewrite(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				newLogger(c).Printf("Wrote \"%s\"\n", c.Args().Get(1))

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and catalogue archives",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				s, err := sfsprite.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer s.Close()

				if err := s.Scan(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List catalogued archives",
			Description: "",
			Action: func(c *cli.Context) error {
				s, err := sfsprite.New(c.String("db"), newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer s.Close()

				summaries, err := s.List()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, summary := range summaries {
					status := "ok"
					switch {
					case summary.Error != "":
						status = fmt.Sprintf("error %d", summary.ErrorID)
					case !summary.Stable:
						status = "unstable"
					}
					fmt.Printf("%s\t%s\t%d sprites\t%d animations\t%s\n", summary.SHA1, status, summary.Sprites, summary.Animations, summary.Path)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
