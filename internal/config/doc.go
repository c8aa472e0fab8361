// Package config loads vschema.json or vschema.yaml.
//
// # Configuration File Structure
//
//	{
//	  "render": {
//	    "pretty": true,
//	    "minify": false,
//	    "delimiters": ["{{", "}}"],
//	    "title": "Preview"
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "metricsPath": "/metrics",
//	    "watch": true,
//	    "debounce": "100ms"
//	  },
//	  "s3": {
//	    "region": "eu-west-1",
//	    "endpoint": "http://localhost:9000",
//	    "usePathStyle": true
//	  },
//	  "log": {"level": "debug"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
