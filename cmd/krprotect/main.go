package main

/*
* CLI front-end for the keyprotect package: protect, unprotect, shadow, and
* classify canonical private/public key buffers from the command line.
 */

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/kryptco/krprotect/keyprotect"
)

var log = logging.MustGetLogger("")

var stderrFormat = logging.MustStringFormatter(
	`%{color}krprotect ▶ %{message}%{color:reset}`,
)

func setupLogging(debug bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetFormatter(stderrFormat)
	leveled := logging.AddModuleLevel(backend)
	if debug {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.WARNING, "")
	}
	logging.SetBackend(leveled)
}

func fatal(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString(msg, args...))
	os.Exit(1)
}

func readInput(c *cli.Context) []byte {
	path := c.Args().First()
	if path == "" || path == "-" {
		buf, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fatal("reading stdin: %s", err)
		}
		return buf
	}
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		fatal("reading %s: %s", path, err)
	}
	return buf
}

func writeOutput(buf []byte) {
	if _, err := os.Stdout.Write(buf); err != nil {
		fatal("writing output: %s", err)
	}
}

func promptPassphrase(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatal("reading passphrase: %s", err)
	}
	return string(b)
}

func protectCommand(c *cli.Context) error {
	plain := readInput(c)
	passphrase := promptPassphrase("Passphrase: ")
	log.Debugf("protecting %d byte buffer", len(plain))
	protected, err := keyprotect.Protect(plain, passphrase)
	if err != nil {
		fatal("%s", err)
	}
	writeOutput(protected)
	return nil
}

func unprotectCommand(c *cli.Context) error {
	protected := readInput(c)
	passphrase := promptPassphrase("Passphrase: ")
	log.Debugf("unprotecting %d byte buffer", len(protected))
	plain, err := keyprotect.Unprotect(protected, passphrase)
	if err != nil {
		fatal("%s", err)
	}
	writeOutput(plain)
	return nil
}

func shadowCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		fatal("usage: krprotect shadow <locator-file> [public-key-file]")
	}
	locator, err := ioutil.ReadFile(c.Args().First())
	if err != nil {
		fatal("reading %s: %s", c.Args().First(), err)
	}
	var pub []byte
	if c.NArg() >= 2 && c.Args().Get(1) != "-" {
		pub, err = ioutil.ReadFile(c.Args().Get(1))
		if err != nil {
			fatal("reading %s: %s", c.Args().Get(1), err)
		}
	} else {
		pub, err = ioutil.ReadAll(os.Stdin)
		if err != nil {
			fatal("reading stdin: %s", err)
		}
	}
	shadowed, err := keyprotect.Shadow(pub, locator)
	if err != nil {
		fatal("%s", err)
	}
	writeOutput(shadowed)
	return nil
}

func classifyCommand(c *cli.Context) error {
	buf := readInput(c)
	kind := keyprotect.Classify(buf)
	switch kind {
	case keyprotect.Plain:
		fmt.Println(color.GreenString(kind.String()))
	case keyprotect.Protected:
		fmt.Println(color.YellowString(kind.String()))
	case keyprotect.Shadowed:
		fmt.Println(color.CyanString(kind.String()))
	default:
		fmt.Println(color.RedString(kind.String()))
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "krprotect"
	app.Usage = "protect, unprotect, shadow, and classify canonical private key buffers"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "print debug tracing to stderr",
		},
	}
	app.Before = func(c *cli.Context) error {
		setupLogging(c.GlobalBool("debug"))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "protect",
			Usage:     "encrypt the protected parameters of a private-key buffer under a passphrase",
			ArgsUsage: "[file|-]",
			Action:    protectCommand,
		},
		{
			Name:      "unprotect",
			Usage:     "decrypt a protected-private-key buffer given its passphrase",
			ArgsUsage: "[file|-]",
			Action:    unprotectCommand,
		},
		{
			Name:      "shadow",
			Usage:     "rewrite a public-key buffer into a shadowed-private-key buffer embedding a locator",
			ArgsUsage: "<locator-file> [public-key-file|-]",
			Action:    shadowCommand,
		},
		{
			Name:      "classify",
			Usage:     "report whether a buffer is plain, protected, or shadowed",
			ArgsUsage: "[file|-]",
			Action:    classifyCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fatal("%s", err)
	}
}
