package cmd

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ExitMocks struct {
	mock.Mock
	exitStatuses []int
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	fmt.Printf(format+"\n", v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	fmt.Println(v...)
	m.exitStatuses = append(m.exitStatuses, 1)
}

func (m *ExitMocks) Exit(code int) {
	m.exitStatuses = append(m.exitStatuses, code)
}

func (m *ExitMocks) fatalCalls() int {
	return len(m.exitStatuses)
}

func (m *ExitMocks) lastExitStatus() int {
	if len(m.exitStatuses) == 0 {
		return 0
	}
	return m.exitStatuses[len(m.exitStatuses)-1]
}

func NewExitMocks() *ExitMocks {
	exitMocks := ExitMocks{
		exitStatuses: make([]int, 0),
	}
	return &exitMocks
}

func MakeExitMock(m *ExitMocks) func(int) {
	return func(code int) {
		m.Exit(code)
	}
}

var exitMocks *ExitMocks

// setupTests patches over the fatal exits and walls the test off from any
// config file present on the host.
func setupTests(t *testing.T) {
	exitMocks = NewExitMocks()
	logFatalf = exitMocks.Fatalf
	logFatalln = exitMocks.Fatalln
	osExit = MakeExitMock(exitMocks)

	viper.Reset()
	t.Setenv(envConfigLocation, filepath.Join(t.TempDir(), "blogpub.yaml"))
}

// runCmd executes one blogpub command line and asserts on the number of
// fatal exits it triggered.
func runCmd(t *testing.T, cmd []string, intentMsg string, expectError bool) {
	fatalCallsBefore := exitMocks.fatalCalls()

	blogpubFlags = flagsT{}
	// metrics stay off during tests
	metricsOff := false
	blogpubFlags.root.metrics.Enabled = &metricsOff

	rootCmd.SetArgs(cmd)
	require.NoError(t, rootCmd.Execute(), "error executing '"+strings.Join(cmd, " ")+"' : "+intentMsg)
	if expectError {
		require.Equal(t, fatalCallsBefore+1, exitMocks.fatalCalls(),
			"ran '"+strings.Join(cmd, " ")+"' expecting error and didn't see one in mocks : "+intentMsg)
	} else {
		require.Equal(t, fatalCallsBefore, exitMocks.fatalCalls(),
			"unexpected error in mocks on '"+strings.Join(cmd, " ")+"' : "+intentMsg)
	}
}

// captureOutput collects what fn prints through infoLogger, so tests can
// assert on command output.
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	saved := infoLogger
	infoLogger = log.New(&buf, "", 0)
	defer func() { infoLogger = saved }()
	fn()
	return buf.String()
}
