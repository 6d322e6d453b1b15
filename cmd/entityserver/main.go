package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/entitycache/bootstrap"
	"github.com/fulldump/entitycache/configuration"
)

var banner = `
            _   _ _
  ___ _ __ | |_(_) |_ _   _    ___  ___ _ ____   _____ _ __
 / _ \ '_ \| __| | __| | | |  / __|/ _ \ '__\ \ / / _ \ '__|
|  __/ | | | |_| | |_| |_| |  \__ \  __/ |   \ V /  __/ |
 \___|_| |_|\__|_|\__|\__, |  |___/\___|_|    \_/ \___|_|
                      |___/        version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _, _, err := bootstrap.Bootstrap(&c)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err.Error())
		os.Exit(-1)
	}

	start()
}
