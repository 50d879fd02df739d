// Package config loads board descriptions: the clocks and bus ports of
// each rail and the controller settings.
//
// Boards are YAML files. The MSM8x60 board is built in and returned by
// Default; Load reads a board from disk. Every board is validated before
// it is returned.
//
//	rails:
//	  fs_mdp:
//	    bus_ports: [1, 2]
//	    clocks:
//	      - name: core_clk
//	      - name: iface_clk
//	        reset_rate: 27000000
package config
