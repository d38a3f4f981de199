//go:build !linux

package main

import "syscall"

func workerProcAttr() *syscall.SysProcAttr {
	return nil
}
