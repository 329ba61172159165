// Command ghostbit hides files inside audio carriers and gets them back.
//
// Usage:
//
//	ghostbit audio encode   -i carrier.wav -s secret.txt [-s more.bin] -o out.wav [-q high|normal|low] [-p]
//	ghostbit audio decode   -i stego.wav -o outdir [-p]
//	ghostbit audio analyze  -i stego.wav [-p]
//	ghostbit audio capacity -i carrier.wav [-q high|normal|low]
//
// Exit codes: 0 success, 2 capacity/format error, 3 auth error, 4 I/O
// error, 5 cancelled.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/term"

	"ghostbit/audio"
	"ghostbit/container"
	"ghostbit/stego"
	"ghostbit/stegoerr"
)

// stringList collects repeated -s flags.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	args := os.Args[1:]
	if len(args) < 2 || args[0] != "audio" {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[1] {
	case "encode":
		err = runEncode(args[2:])
	case "decode":
		err = runDecode(args[2:])
	case "analyze":
		err = runAnalyze(args[2:])
	case "capacity":
		err = runCapacity(args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "ghostbit: %v\n", err)
		var se *stegoerr.Error
		if errors.As(err, &se) {
			os.Exit(se.Code.ExitCode())
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ghostbit audio <encode|decode|analyze|capacity> [flags]

  encode   -i carrier -s secret [-s ...] -o output [-q quality] [-p]
  decode   -i stego -o outdir [-p]
  analyze  -i stego [-p]
  capacity -i carrier [-q quality]

  -q is one of high, normal, low (default normal)
  -p prompts for a password on the terminal`)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(confirm bool) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", stegoerr.IO("failed to read password", err)
	}
	if confirm {
		fmt.Fprint(os.Stderr, "Confirm password: ")
		again, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", stegoerr.IO("failed to read password", err)
		}
		if string(pw) != string(again) {
			return "", stegoerr.Format("passwords do not match")
		}
	}
	return string(pw), nil
}

// progressPrinter logs one line per processed file and never cancels.
type progressPrinter struct{}

func (progressPrinter) OnEncoded(p stego.FileProgress) bool {
	fmt.Fprintf(os.Stderr, "  hid %s (%d bytes) [%d/%d]\n", p.Name, p.Bytes, p.Index+1, p.Total)
	return false
}

func (progressPrinter) OnDecoded(p stego.FileProgress) bool {
	fmt.Fprintf(os.Stderr, "  found %s (%d bytes) [%d/%d]\n", p.Name, p.Bytes, p.Index+1, p.Total)
	return false
}

func parseMode(s string) (stego.QualityMode, error) {
	mode, ok := stego.ParseQualityMode(s)
	if !ok {
		return 0, stegoerr.Format("quality must be one of high, normal, low")
	}
	return mode, nil
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	input := fs.String("i", "", "carrier audio file")
	output := fs.String("o", "", "output file (.wav)")
	quality := fs.String("q", "normal", "quality mode: high, normal, low")
	askPass := fs.Bool("p", false, "prompt for a password")
	var secrets stringList
	fs.Var(&secrets, "s", "secret file to hide (repeatable)")
	fs.Parse(args)

	if *input == "" || *output == "" || len(secrets) == 0 {
		return stegoerr.Format("encode requires -i, -o, and at least one -s")
	}
	if err := audio.ValidateOutputFormat(filepath.Ext(*output)); err != nil {
		return err
	}
	mode, err := parseMode(*quality)
	if err != nil {
		return err
	}

	password := ""
	if *askPass {
		password, err = promptPassword(true)
		if err != nil {
			return err
		}
	}

	var files []container.File
	for _, path := range secrets {
		data, err := os.ReadFile(path)
		if err != nil {
			return stegoerr.IO("failed to read secret file", err)
		}
		files = append(files, container.File{Name: filepath.Base(path), Data: data})
	}

	samples, headerLen, meta, err := audio.DecodeToPCM(*input)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		return stegoerr.IO("failed to read carrier", err)
	}

	var carrier, trailer []byte
	if strings.EqualFold(filepath.Ext(*input), ".wav") {
		// The stego output is the original file with only sample bytes
		// modified; trailing chunks after the data chunk pass through.
		trailer = raw[headerLen+len(samples):]
		carrier = raw[:headerLen+len(samples)]
	} else {
		// Non-WAV sources were decoded to bare PCM; the output is built
		// fresh from the sample stream.
		carrier = samples
		headerLen = 0
	}

	coordinator := stego.NewCoordinator(progressPrinter{})
	stegoOut, report, err := coordinator.Encode(carrier, headerLen, files, mode, password)
	if err != nil {
		return err
	}

	var outBytes []byte
	if strings.EqualFold(filepath.Ext(*input), ".wav") {
		outBytes = append(stegoOut, trailer...)
	} else {
		outBytes, err = audio.EncodeFromPCM(stegoOut, meta, "wav")
		if err != nil {
			return err
		}
	}

	if err := writeAtomic(*output, outBytes); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes, container %d bytes, PSNR %.2f dB)\n",
		*output, len(outBytes), report.ContainerSize, report.PSNRdB)
	return nil
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	input := fs.String("i", "", "stego audio file")
	outDir := fs.String("o", ".", "output directory")
	askPass := fs.Bool("p", false, "prompt for a password")
	fs.Parse(args)

	if *input == "" {
		return stegoerr.Format("decode requires -i")
	}

	password := ""
	if *askPass {
		var err error
		password, err = promptPassword(false)
		if err != nil {
			return err
		}
	}

	// DecodeToPCM already strips the format header; the returned sample
	// buffer is all body.
	samples, _, _, err := audio.DecodeToPCM(*input)
	if err != nil {
		return err
	}

	// When the flow reaches an encrypted envelope without a password, ask
	// for one interactively instead of failing outright.
	provider := func() stego.PasswordDecision {
		pw, err := promptPassword(false)
		if err != nil {
			return stego.Cancel()
		}
		return stego.Provide(pw)
	}

	coordinator := stego.NewCoordinator(progressPrinter{})
	files, err := coordinator.Decode(samples, 0, password, provider)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return stegoerr.IO("failed to create output directory", err)
	}
	for _, f := range files {
		if err := writeAtomic(filepath.Join(*outDir, f.Name), f.Data); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "extracted %d file(s) to %s\n", len(files), *outDir)
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	input := fs.String("i", "", "stego audio file")
	askPass := fs.Bool("p", false, "prompt for a password")
	fs.Parse(args)

	if *input == "" {
		return stegoerr.Format("analyze requires -i")
	}

	password := ""
	if *askPass {
		var err error
		password, err = promptPassword(false)
		if err != nil {
			return err
		}
	}

	samples, _, _, err := audio.DecodeToPCM(*input)
	if err != nil {
		return err
	}

	// Carrier tags are informational; a file without readable tags is
	// still a perfectly good carrier.
	if tags, err := audio.ReadTags(*input); err == nil && !tags.Empty() {
		fmt.Printf("carrier tags: %s\n", formatTags(tags))
	}

	report := stego.NewAnalyzer().Analyze(samples, 0, password)
	if !report.HasHiddenData {
		fmt.Println("no hidden data")
		return nil
	}

	fmt.Printf("hidden data present\n")
	fmt.Printf("  cipher version: %d\n", report.CipherVersion)
	fmt.Printf("  quality mode:   %s\n", report.Mode)
	fmt.Printf("  total size:     %d bytes\n", report.TotalSize)
	if report.FileCount > 0 {
		fmt.Printf("  files (%d):\n", report.FileCount)
		for _, f := range report.Files {
			fmt.Printf("    %s (%d bytes)\n", f.Name, f.Size)
		}
	} else if report.CipherVersion != 0 {
		fmt.Printf("  encrypted; supply -p to list files\n")
	}
	return nil
}

func runCapacity(args []string) error {
	fs := flag.NewFlagSet("capacity", flag.ExitOnError)
	input := fs.String("i", "", "carrier audio file")
	quality := fs.String("q", "normal", "quality mode: high, normal, low")
	files := fs.Int("n", 1, "estimated number of files")
	fs.Parse(args)

	if *input == "" {
		return stegoerr.Format("capacity requires -i")
	}
	mode, err := parseMode(*quality)
	if err != nil {
		return err
	}

	samples, _, _, err := audio.DecodeToPCM(*input)
	if err != nil {
		return err
	}

	fmt.Printf("%d\n", stego.MaxPayloadBytes(len(samples), mode, *files))
	return nil
}

// formatTags renders the set TagInfo fields as a single display line.
func formatTags(tags *audio.TagInfo) string {
	var parts []string
	if tags.Title != "" {
		parts = append(parts, tags.Title)
	}
	if tags.Artist != "" {
		parts = append(parts, tags.Artist)
	}
	if tags.Album != "" {
		parts = append(parts, tags.Album)
	}
	if tags.Genre != "" {
		parts = append(parts, tags.Genre)
	}
	if tags.Year != "" {
		parts = append(parts, tags.Year)
	}
	return strings.Join(parts, " / ")
}

// writeAtomic writes data to a uniquely named temp file in the target
// directory, then renames it into place, so a failed write never leaves a
// partial output behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return stegoerr.IO("failed to write output file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return stegoerr.IO("failed to finalize output file", err)
	}
	return nil
}
