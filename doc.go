// The binghome smart home kiosk hub
//
// Features
//
// - voice commands resolved to device actions, with teachable aliases
//
// - sensor monitoring (DHT22 temperature/humidity, gas, light) with a
// simulator fallback when no hardware is present
//
// - a web dashboard (REST + WebSocket push)
//
// - weather, news, WiFi/Bluetooth management and system monitoring
//
// - device control through a Home Assistant style automation hub
//
// Services communicate as JSON events over MQTT, so they can be run in
// one process or spread across hosts.
package binghome
