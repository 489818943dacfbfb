package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// GenesisFlags covers network selection and the genesis role addresses.
func GenesisFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "chain",
			Usage: "Network to bootstrap (main|test|dev|local)",
			Value: "local",
		},
		cli.StringFlag{
			Name:  "sequencer",
			Usage: "Bitcoin address of the sequencer (required on main, overrides the preset elsewhere)",
		},
		cli.StringFlag{
			Name:  "dao",
			Usage: "Bitcoin address of the DAO treasury (required on main, overrides the preset elsewhere)",
		},
		cli.BoolFlag{
			Name:  "memory",
			Usage: "Bootstrap into an ephemeral in-memory database (for experiments)",
		},
	}
}
