package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const dividerSrc = `
circuit divider(vin in, vout out, gnd gnd) {
    net mid
    inst r1 = R("10k")
    inst r2 = R("10k")
    r1[~, ~] = vin, mid
    r2[~, ~] = mid, gnd
}
`

func writeTempCircuit(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "divider.circuit")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runRootCmd executes rootCmd with args, capturing stdout, the same way
// cmd/jtag/cmd/e2e_test.go's TestDiscoverE2E drives its own rootCmd.
func runRootCmd(t *testing.T, args []string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	compileRoot, compileSchematic, compileBoard = "", "", ""
	checkRoot, checkSchematic, checkBoard = "", "", ""

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done

	return buf.String(), err
}

func TestCompileE2E(t *testing.T) {
	path := writeTempCircuit(t, dividerSrc)

	output, err := runRootCmd(t, []string{"compile", path})
	if err != nil {
		t.Fatalf("compile: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "2 insts, 3 nets, 4 assigns") {
		t.Errorf("unexpected netlist summary, got: %s", output)
	}
	if !strings.Contains(output, "r1: R") {
		t.Errorf("want inst r1 listed, got: %s", output)
	}
}

func TestCheckE2E(t *testing.T) {
	path := writeTempCircuit(t, dividerSrc)

	output, err := runRootCmd(t, []string{"check", path})
	if err != nil {
		t.Fatalf("check: %v\noutput: %s", err, output)
	}
	if !strings.Contains(output, "OK") {
		t.Errorf("want OK, got: %s", output)
	}
}

func TestCompileE2E_UnknownExtensionFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "divider.txt")
	if err := os.WriteFile(path, []byte(dividerSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runRootCmd(t, []string{"compile", path})
	if err == nil {
		t.Fatal("want error for unrecognized extension, got nil")
	}
}

func TestCompileE2E_MissingFileFails(t *testing.T) {
	_, err := runRootCmd(t, []string{"compile", "/no/such/file.circuit"})
	if err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}
