package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/util"
	"github.com/spf13/cobra"
)

// Conversion utilities: one token per input line, one result per output line.
var (
	mult2kadCmd = &cobra.Command{
		Use:   "mult2kad",
		Short: "Convert peer IDs (multihash) to Kademlia IDs in hex",
		Args:  cobra.NoArgs,
		RunE: convertCommand(func(id string) (string, error) {
			key, err := peerid.Canonicalize(id)
			if err != nil {
				return "", err
			}
			return key.String(), nil
		}),
	}

	hashesCmd = &cobra.Command{
		Use:   "hashes",
		Short: "Print the Kademlia ID of each peer ID followed by the peer ID",
		Args:  cobra.NoArgs,
		RunE: convertCommand(func(id string) (string, error) {
			key, err := peerid.Canonicalize(id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s (%s)", key, id), nil
		}),
	}

	mult2hexCmd = &cobra.Command{
		Use:   "mult2hex",
		Short: "Print the digest of each multihash peer ID in hex",
		Args:  cobra.NoArgs,
		RunE:  convertCommand(peerid.DigestHex),
	}

	hex2multCmd = &cobra.Command{
		Use:   "hex2mult",
		Short: "Build a sha2-256 multihash peer ID from each hex digest",
		Args:  cobra.NoArgs,
		RunE:  convertCommand(peerid.FromDigestHex),
	}

	shrinkCmd = &cobra.Command{
		Use:   "shrink",
		Short: "Replace peer IDs in a log with short <hex> labels",
		Long: `shrink copies standard input to standard output, replacing every peer ID
(Qm... or 12D3Koo...) with the first characters of its Kademlia ID in angle
brackets. Each line is flushed as soon as it is read, so it can follow a
running lookup.`,
		Args: cobra.NoArgs,
		RunE: runShrink,
	}
)

func init() {
	rootCmd.AddCommand(mult2kadCmd, hashesCmd, mult2hexCmd, hex2multCmd, shrinkCmd)
}

func convertCommand(convert func(string) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := initLogging(); err != nil {
			return err
		}
		return convertLines(cmd.InOrStdin(), cmd.OutOrStdout(), convert)
	}
}

// convertLines applies convert to every non-blank trimmed line of r.
// It stops at the first line that fails.
func convertLines(r io.Reader, w io.Writer, convert func(string) (string, error)) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	defer out.Flush()

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}

		result, err := convert(token)
		if err != nil {
			util.LogErrorf("Conversion failed at line %d: %v", lineNum, err)
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, err := fmt.Fprintln(out, result); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runShrink(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	return shrinkLines(cmd.InOrStdin(), cmd.OutOrStdout(), labelLength)
}

// shrinkLines rewrites each line word by word; words are re-joined with a
// single trailing space each.
func shrinkLines(r io.Reader, w io.Writer, n int) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		var b strings.Builder
		for _, word := range strings.Fields(scanner.Text()) {
			b.WriteString(peerid.ShortenToken(word, n))
			b.WriteString(" ")
		}
		b.WriteString("\n")
		if _, err := out.WriteString(b.String()); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
	}
	return scanner.Err()
}
