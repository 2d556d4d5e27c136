// Package mqtt connects the service to the MQTT broker.
//
// The broker is the only path to the smart-home hub: entity definitions
// go out as retained Home Assistant discovery configs and user actions
// come back as commands on graylogic/command/{protocol}/{unique_id}.
//
//	Wevolor controllers ↔ Gray Logic ↔ MQTT broker ↔ Home Assistant
//
// The client reconnects automatically, restores its subscriptions and
// keeps graylogic/system/status current (online on connect, offline on
// Close or through the last will), which discovery configs use as their
// availability topic.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllBridgeCommands("wevolor"), 1,
//	    func(topic string, payload []byte) error {
//	        return dispatch(topic, payload)
//	    })
package mqtt
