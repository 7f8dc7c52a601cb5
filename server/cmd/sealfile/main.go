// Command sealfile seals files with an integrity tag, verifies sealed files
// and encrypts or decrypts files with AES-128.
//
//	sealfile seal    [-key hex | -passphrase p [-salt hex]] [-out path] <file>
//	sealfile verify  (-key hex | -passphrase p -salt hex) <file.sealed>
//	sealfile encrypt [-mode CBC|CFB|OFB] [-key hex | -passphrase p [-salt hex]] [-out path] <file>
//	sealfile decrypt [-mode CBC|CFB|OFB] (-key hex | -passphrase p -salt hex) [-out path] <file>
//
// verify exits 0 when the file is intact and 2 when it was modified.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"Sealbox/server/internal/pkg/crypto"
	"Sealbox/server/internal/pkg/encryption/modes"
	"Sealbox/server/internal/pkg/helpers"
	"Sealbox/server/internal/pkg/integrity"
)

const (
	exitOK       = 0
	exitError    = 1
	exitModified = 2
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitError
	}

	var (
		code int
		err  error
	)
	switch args[0] {
	case "seal":
		code, err = runSeal(args[1:], stdout, stderr)
	case "verify":
		code, err = runVerify(args[1:], stdout, stderr)
	case "encrypt":
		code, err = runCipher(args[1:], true, stdout, stderr)
	case "decrypt":
		code, err = runCipher(args[1:], false, stdout, stderr)
	case "-h", "-help", "help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitError
	}

	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "sealfile %s: %v\n", args[0], err)
		}
		return exitError
	}
	return code
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: sealfile seal|verify|encrypt|decrypt [flags] <file>")
}

// keyFlags are shared by every command
type keyFlags struct {
	key        string
	passphrase string
	salt       string
	iterations int
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.key, "key", "", "hex-encoded 16-byte key")
	fs.StringVar(&k.passphrase, "passphrase", "", "derive the key from a passphrase")
	fs.StringVar(&k.salt, "salt", "", "hex salt for -passphrase")
	fs.IntVar(&k.iterations, "iterations", crypto.DefaultIterations, "PBKDF2 iterations for -passphrase")
}

// resolve returns the key to use. When generate is set a missing key or
// salt is created and reported on out so the result can be reversed.
func (k *keyFlags) resolve(generate bool, out io.Writer) ([]byte, error) {
	if k.key != "" && k.passphrase != "" {
		return nil, fmt.Errorf("-key and -passphrase are mutually exclusive")
	}
	if k.key != "" {
		return helpers.DecodeKey(k.key)
	}

	if k.passphrase == "" {
		if !generate {
			return nil, fmt.Errorf("-key or -passphrase is required")
		}
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "key: %s\n", hex.EncodeToString(key))
		return key, nil
	}

	var salt []byte
	if k.salt != "" {
		b, err := helpers.DecodeHex("salt", k.salt)
		if err != nil {
			return nil, err
		}
		salt = b
	} else {
		if !generate {
			return nil, fmt.Errorf("-salt is required with -passphrase")
		}
		b, err := crypto.NewSalt()
		if err != nil {
			return nil, err
		}
		salt = b
		fmt.Fprintf(out, "salt: %s\n", hex.EncodeToString(salt))
	}
	return crypto.DeriveKey(k.passphrase, salt, k.iterations)
}

func parse(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func runSeal(args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("seal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var kf keyFlags
	kf.register(fs)
	out := fs.String("out", "", "output path (default <file>.sealed)")

	path, err := parse(fs, args)
	if err != nil {
		return exitError, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return exitError, err
	}
	key, err := kf.resolve(true, stdout)
	if err != nil {
		return exitError, err
	}

	sealed, err := integrity.Seal(content, key)
	if err != nil {
		return exitError, err
	}

	dst := *out
	if dst == "" {
		dst = path + ".sealed"
	}
	if err := os.WriteFile(dst, sealed, 0o644); err != nil {
		return exitError, err
	}
	fmt.Fprintf(stdout, "sealed %s -> %s\n", path, dst)
	return exitOK, nil
}

func runVerify(args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var kf keyFlags
	kf.register(fs)

	path, err := parse(fs, args)
	if err != nil {
		return exitError, err
	}
	sealed, err := os.ReadFile(path)
	if err != nil {
		return exitError, err
	}
	key, err := kf.resolve(false, stdout)
	if err != nil {
		return exitError, err
	}

	intact, err := integrity.Verify(sealed, key)
	if err != nil {
		return exitError, err
	}
	if !intact {
		fmt.Fprintf(stdout, "%s: modified\n", path)
		return exitModified, nil
	}
	fmt.Fprintf(stdout, "%s: intact\n", path)
	return exitOK, nil
}

func runCipher(args []string, encrypt bool, stdout, stderr io.Writer) (int, error) {
	name := "decrypt"
	if encrypt {
		name = "encrypt"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var kf keyFlags
	kf.register(fs)
	modeName := fs.String("mode", modes.CBC.String(), "mode of operation: CBC, CFB or OFB")
	out := fs.String("out", "", "output path")

	path, err := parse(fs, args)
	if err != nil {
		return exitError, err
	}
	mode, err := modes.ParseMode(*modeName)
	if err != nil {
		return exitError, err
	}
	in, err := os.ReadFile(path)
	if err != nil {
		return exitError, err
	}
	key, err := kf.resolve(encrypt, stdout)
	if err != nil {
		return exitError, err
	}

	var result []byte
	if encrypt {
		result, err = modes.EncryptMessage(mode, key, in)
	} else {
		result, err = modes.DecryptMessage(mode, key, in)
	}
	if err != nil {
		return exitError, err
	}

	dst := *out
	if dst == "" {
		dst = outputPath(path, encrypt)
	}
	if err := os.WriteFile(dst, result, 0o644); err != nil {
		return exitError, err
	}
	fmt.Fprintf(stdout, "%sed %s (%s) -> %s\n", name, path, mode, dst)
	return exitOK, nil
}

func outputPath(path string, encrypt bool) string {
	if encrypt {
		return path + ".enc"
	}
	if trimmed := strings.TrimSuffix(path, ".enc"); trimmed != path {
		return trimmed
	}
	return path + ".dec"
}
