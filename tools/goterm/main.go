package main

import "fmt"
import "os"
import "runtime"
import "runtime/pprof"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "load":
		doLoad(os.Args[2:])
	case "check":
		doCheck(os.Args[2:])
	case "monster":
		doMonster(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("usage: goterm <command> [options]\n\n")
	fmt.Printf("commands:\n")
	fmt.Printf("  load     populate a pool with generated terms, log stats\n")
	fmt.Printf("  check    round-trip monster generated term texts\n")
	fmt.Printf("  monster  dump monster generated term texts\n")
}

func setCPU(ncpu int) {
	runtime.GOMAXPROCS(ncpu)
}

func takeMEMProfile(filename string) bool {
	if filename == "" {
		return false
	}
	fd, err := os.Create(filename)
	if err != nil {
		fmt.Printf("unable to create %q: %v\n", filename, err)
		return false
	}
	pprof.WriteHeapProfile(fd)
	defer fd.Close()
	return true
}
