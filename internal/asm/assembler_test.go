package asm

import (
	"testing"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/syntax"
	"github.com/stretchr/testify/require"
)

func assembleSrc(t *testing.T, src string) []runtime.Program {
	t.Helper()
	tree, errs := syntax.ParseSourceFile(src)
	require.Empty(t, errs)
	progs, err := AssembleFile(tree, src)
	require.NoError(t, err)
	return progs
}

func runProgram(t *testing.T, prog *runtime.Program) *runtime.Frame {
	t.Helper()
	overlay := runtime.NewOverlay(runtime.NewImage())
	f := runtime.NewFrame(prog)
	require.NoError(t, f.Run(overlay))
	return f
}

func Test_AssembleFile_assignsArithmeticResultToLocal(t *testing.T) {
	progs := assembleSrc(t, `PROGRAM Main
VAR
	a : DINT;
	b : DINT;
END_VAR
a := 1;
b := a + 2;
END_PROGRAM`)
	require.Len(t, progs, 1)

	f := runProgram(t, &progs[0])
	require.Equal(t, int64(1), f.Locals["a"].I)
	require.Equal(t, int64(3), f.Locals["b"].I)
}

func Test_AssembleFile_ifStmtTakesTakenBranch(t *testing.T) {
	progs := assembleSrc(t, `PROGRAM Main
VAR
	x : DINT;
END_VAR
IF TRUE THEN
	x := 1;
ELSE
	x := 2;
END_IF
END_PROGRAM`)
	f := runProgram(t, &progs[0])
	require.Equal(t, int64(1), f.Locals["x"].I)
}

func Test_AssembleFile_whileStmtLoopsToCompletion(t *testing.T) {
	progs := assembleSrc(t, `PROGRAM Main
VAR
	i : DINT;
END_VAR
i := 0;
WHILE i < 3 DO
	i := i + 1;
END_WHILE
END_PROGRAM`)
	f := runProgram(t, &progs[0])
	require.Equal(t, int64(3), f.Locals["i"].I)
}

func Test_AssembleFile_directAddressReadWrite(t *testing.T) {
	progs := assembleSrc(t, `PROGRAM Main
%QX0.0 := %IX0.0;
END_PROGRAM`)
	require.Len(t, progs, 1)

	overlay := runtime.NewOverlay(runtime.NewImage())
	in, err := runtime.ParseAddress("%IX0.0")
	require.NoError(t, err)
	overlay.Write(in, runtime.BoolValue(true))

	f := runtime.NewFrame(&progs[0])
	require.NoError(t, f.Run(overlay))

	out, err := runtime.ParseAddress("%QX0.0")
	require.NoError(t, err)
	require.True(t, overlay.Read(out).B)
}

func Test_AssembleFile_booleanAndParenthesizedCondition(t *testing.T) {
	progs := assembleSrc(t, `PROGRAM Main
VAR
	a : BOOL;
	b : BOOL;
	result : BOOL;
END_VAR
a := TRUE;
b := FALSE;
result := (a AND NOT b) OR b;
END_PROGRAM`)
	f := runProgram(t, &progs[0])
	require.True(t, f.Locals["result"].B)
}

func Test_AssembleFile_unsupportedForStmtReturnsUnsupportedError(t *testing.T) {
	tree, errs := syntax.ParseSourceFile(`PROGRAM Main
VAR
	i : DINT;
END_VAR
FOR i := 1 TO 3 DO
END_FOR
END_PROGRAM`)
	require.Empty(t, errs)
	_, err := AssembleFile(tree, "")
	require.Error(t, err)
	require.IsType(t, &Unsupported{}, err)
}
