package main

import "syscall"

// Workers die with the parent so a crashed server leaves no orphans.
func workerProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
}
