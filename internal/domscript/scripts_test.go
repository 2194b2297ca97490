package domscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScripts_AreNonEmptyAndReferenceTheWalker(t *testing.T) {
	scripts := map[string]string{
		"ProcessDom":       ProcessDom,
		"ProcessAllOfDom":  ProcessAllOfDom,
		"WaitForDomSettle": WaitForDomSettle,
		"ScrollToHeight":   ScrollToHeight,
		"DebugDom":         DebugDom,
		"CleanupDebug":     CleanupDebug,
		"Walker":           Walker,
	}

	for name, script := range scripts {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, strings.TrimSpace(script), "%s must not be empty", name)
		})
	}
}

func TestWalker_InstallsExpectedGlobals(t *testing.T) {
	assert.Contains(t, Walker, "__browserloopWalk")
	assert.Contains(t, Walker, "__browserloopCleanupDebug")
}

func TestProcessDom_UsesWalkerGlobal(t *testing.T) {
	assert.Contains(t, ProcessDom, "__browserloopWalk")
}
