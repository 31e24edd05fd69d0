package agent

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// processGroupCleanup kills the whole process tree of a child command when the
// context is canceled, not just the direct child. the claude CLI spawns its own
// helpers (MCP servers, browsers) that must not outlive a canceled run.
type processGroupCleanup struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
	err  error
}

// setupProcessGroup configures the command to run in its own process group so
// descendants can be signaled together.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// newProcessGroupCleanup creates a cleanup handler for an already-started
// command. caller must call Wait exactly once; repeated calls are safe.
func newProcessGroupCleanup(cmd *exec.Cmd, cancelCh <-chan struct{}) *processGroupCleanup {
	pg := &processGroupCleanup{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go pg.watchForCancel(cancelCh)
	return pg
}

func (pg *processGroupCleanup) watchForCancel(cancelCh <-chan struct{}) {
	select {
	case <-cancelCh:
		pg.killProcessGroup()
	case <-pg.done:
		// process completed normally
	}
}

// killProcessGroup sends SIGTERM to the group, then SIGKILL after a brief
// grace period if anything is still alive.
func (pg *processGroupCleanup) killProcessGroup() {
	if pg.cmd.Process == nil {
		return
	}

	pgid := -pg.cmd.Process.Pid

	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil {
		// ESRCH means the group already exited
		if err != syscall.ESRCH {
			fmt.Printf("[agent] SIGTERM failed for pgid %d: %v\n", pgid, err)
		}
		return
	}

	time.Sleep(100 * time.Millisecond)

	if err := syscall.Kill(pgid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		fmt.Printf("[agent] SIGKILL failed for pgid %d: %v\n", pgid, err)
	}
}

// Wait waits for the command and releases the cancel watcher. idempotent.
func (pg *processGroupCleanup) Wait() error {
	pg.once.Do(func() {
		pg.err = pg.cmd.Wait()
		close(pg.done)
		if pg.err != nil {
			pg.err = fmt.Errorf("command wait: %w", pg.err)
		}
	})
	return pg.err
}
