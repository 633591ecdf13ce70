package lang

type Key int

const (
	BatteryRemaining Key = iota
	NoAdapterFound
	ViewLogs
	ViewUpdates
	QuitProgram
	DeviceCharging
	DeviceDisconnected
	BatteryUnavailable
	Version
	Notifications
	Loading
	ExecutableNotFound
	ProcessFailed
	OutputUnreadable
	ToolTimeout
	BatteryLow
	BatteryCritical
	ChargingStarted
	ChargeComplete
)

var tables = map[Lang]map[Key]string{
	En: {
		BatteryRemaining:   "remaining",
		NoAdapterFound:     "No headphone adapter found",
		ViewLogs:           "View logs",
		ViewUpdates:        "View updates",
		QuitProgram:        "Close",
		DeviceCharging:     "(Charging)",
		DeviceDisconnected: "(Disconnected)",
		BatteryUnavailable: "(Battery unavailable)",
		Version:            "Version",
		Notifications:      "Notifications",
		Loading:            "Loading...",
		ExecutableNotFound: "headsetcontrol was not found. Place it next to this program or add it to PATH.",
		ProcessFailed:      "headsetcontrol failed to run",
		OutputUnreadable:   "headsetcontrol returned output that could not be read",
		ToolTimeout:        "headsetcontrol did not respond",
		BatteryLow:         "Battery low (%d%%)",
		BatteryCritical:    "Battery critical (%d%%)",
		ChargingStarted:    "Charging started (%d%%)",
		ChargeComplete:     "Battery full",
	},
	Fi: {
		BatteryRemaining:   "jäljellä",
		NoAdapterFound:     "Kuulokeadapteria ei löytynyt",
		ViewLogs:           "Näytä lokitiedostot",
		ViewUpdates:        "Näytä päivitykset",
		QuitProgram:        "Sulje",
		DeviceCharging:     "(Latautuu)",
		DeviceDisconnected: "(Ei yhteyttä)",
		BatteryUnavailable: "(Akku ei saatavilla)",
		Version:            "Versio",
		Notifications:      "Ilmoitukset",
		Loading:            "Ladataan...",
		ExecutableNotFound: "headsetcontrol-ohjelmaa ei löytynyt. Sijoita se tämän ohjelman viereen tai lisää se PATH-muuttujaan.",
		ProcessFailed:      "headsetcontrol-ohjelman suoritus epäonnistui",
		OutputUnreadable:   "headsetcontrol palautti tulosteen, jota ei voitu lukea",
		ToolTimeout:        "headsetcontrol ei vastannut",
		BatteryLow:         "Akku vähissä (%d%%)",
		BatteryCritical:    "Akku lähes tyhjä (%d%%)",
		ChargingStarted:    "Lataus aloitettu (%d%%)",
		ChargeComplete:     "Akku täynnä",
	},
	De: {
		BatteryRemaining:   "verbleibend",
		NoAdapterFound:     "Kein Kopfhöreradapter gefunden",
		ViewLogs:           "Protokolle anzeigen",
		ViewUpdates:        "Updates anzeigen",
		QuitProgram:        "Beenden",
		DeviceCharging:     "(Wird geladen)",
		DeviceDisconnected: "(Getrennt)",
		BatteryUnavailable: "(Akkustand nicht verfügbar)",
		Version:            "Version",
		Notifications:      "Benachrichtigungen",
		Loading:            "Wird geladen...",
		ExecutableNotFound: "headsetcontrol wurde nicht gefunden. Lege es neben dieses Programm oder füge es zum PATH hinzu.",
		ProcessFailed:      "headsetcontrol konnte nicht ausgeführt werden",
		OutputUnreadable:   "headsetcontrol lieferte eine unlesbare Ausgabe",
		ToolTimeout:        "headsetcontrol antwortet nicht",
		BatteryLow:         "Akku schwach (%d%%)",
		BatteryCritical:    "Akku kritisch (%d%%)",
		ChargingStarted:    "Ladevorgang gestartet (%d%%)",
		ChargeComplete:     "Akku voll",
	},
	It: {
		BatteryRemaining:   "rimanente",
		NoAdapterFound:     "Nessun adattatore per cuffie trovato",
		ViewLogs:           "Visualizza file di log",
		ViewUpdates:        "Controlla aggiornamenti",
		QuitProgram:        "Chiudi",
		DeviceCharging:     "(In carica)",
		DeviceDisconnected: "(Disconnesso)",
		BatteryUnavailable: "(Batteria non disponibile)",
		Version:            "Versione",
		Notifications:      "Notifiche",
		Loading:            "Caricamento...",
		ExecutableNotFound: "headsetcontrol non trovato. Posizionalo accanto a questo programma o aggiungilo al PATH.",
		ProcessFailed:      "esecuzione di headsetcontrol non riuscita",
		OutputUnreadable:   "headsetcontrol ha restituito un output illeggibile",
		ToolTimeout:        "headsetcontrol non risponde",
		BatteryLow:         "Batteria scarica (%d%%)",
		BatteryCritical:    "Batteria quasi esaurita (%d%%)",
		ChargingStarted:    "Ricarica avviata (%d%%)",
		ChargeComplete:     "Batteria carica",
	},
}
