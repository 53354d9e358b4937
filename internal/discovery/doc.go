// Package discovery finds trafficled data servers on the local network.
//
// trafficled-server can advertise itself over multicast DNS as
// "_trafficled._tcp". A Scanner browses for that service type and turns each
// answer into a DataServer whose BaseURL can be handed straight to the fetch
// client.
//
//	servers, err := discovery.NewScanner().Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, s := range servers {
//	    fmt.Println(s, s.BaseURL())
//	}
//
// TXT records: "path=/" names the URL prefix the files live under and
// "version=V1_0_5" the data file suffix the server publishes.
package discovery
