// Command tasksim drives the tasking core through a boot-and-idle
// and single-fork scenario and prints a task dump, standing in for
// the kernel's own boot sequence (tasking_install followed by the
// timer IRQ loop).
package main

import (
	"fmt"
	"os"

	"tasking/proc"
)

func main() {
	done := make(chan int, 1)

	init := proc.TaskingInstall(func() {
		for i := 0; i < 3; i++ {
			proc.SwitchTask(true)
		}

		child := proc.Fork(proc.CurrentTask(), func(ret int) {
			if ret == 0 {
				fmt.Println("child: observed return value 0")
				proc.TaskExit(7)
				return
			}
			fmt.Printf("parent: observed child pid %d\n", ret)
		})
		_ = child

		for i := 0; i < 5; i++ {
			proc.SwitchTask(true)
		}

		done <- 1
	})

	<-done
	fmt.Print(proc.DumpTasks())
	if init.State() != proc.Running && init.State() != proc.Ready {
		os.Exit(1)
	}
}
