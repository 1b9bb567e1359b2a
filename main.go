package main

import (
	"oss.terrastruct.com/drawtex/dtcli"
	"oss.terrastruct.com/drawtex/lib/xmain"
)

func main() {
	xmain.Main(dtcli.Run)
}
