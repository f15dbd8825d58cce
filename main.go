package main

import "github.com/yeonholee/hr-payroll/cmd"

func main() {
	cmd.Execute()
}
