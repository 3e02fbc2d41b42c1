package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// RunPomoArgs runs the pomo binary with the given arguments. env is appended
// to the process environment, so its keys win over the inherited ones.
func RunPomoArgs(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	cmdEnv := append(os.Environ(), env...)
	if nolog {
		cmdEnv = append(cmdEnv, "POMO_NO_LOG=true")
	}

	var out, errOut bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = cmdEnv
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err = cmd.Run()
	return out.Bytes(), errOut.Bytes(), err
}
