package constants

// flightColumns is shared between the live upsert and the archive copy so the
// two can never drift.
const FlightColumns = `callsign, cid, logon_time, name, server, pilot_rating,
	latitude, longitude, altitude, groundspeed, heading, transponder,
	flight_rules, aircraft_type, aircraft_faa, aircraft_short,
	departure, arrival, alternate, cruise_tas, planned_altitude,
	deptime, enroute_time, fuel_time, remarks, route, last_updated`

const UpsertFlight = `
	INSERT INTO flights (` + FlightColumns + `)
	VALUES (:callsign, :cid, :logon_time, :name, :server, :pilot_rating,
		:latitude, :longitude, :altitude, :groundspeed, :heading, :transponder,
		:flight_rules, :aircraft_type, :aircraft_faa, :aircraft_short,
		:departure, :arrival, :alternate, :cruise_tas, :planned_altitude,
		:deptime, :enroute_time, :fuel_time, :remarks, :route, :last_updated)
	ON CONFLICT (callsign, cid, logon_time) DO UPDATE
	SET name = EXCLUDED.name,
	    server = EXCLUDED.server,
	    pilot_rating = EXCLUDED.pilot_rating,
	    latitude = EXCLUDED.latitude,
	    longitude = EXCLUDED.longitude,
	    altitude = EXCLUDED.altitude,
	    groundspeed = EXCLUDED.groundspeed,
	    heading = EXCLUDED.heading,
	    transponder = EXCLUDED.transponder,
	    flight_rules = EXCLUDED.flight_rules,
	    aircraft_type = EXCLUDED.aircraft_type,
	    aircraft_faa = EXCLUDED.aircraft_faa,
	    aircraft_short = EXCLUDED.aircraft_short,
	    departure = EXCLUDED.departure,
	    arrival = EXCLUDED.arrival,
	    alternate = EXCLUDED.alternate,
	    cruise_tas = EXCLUDED.cruise_tas,
	    planned_altitude = EXCLUDED.planned_altitude,
	    deptime = EXCLUDED.deptime,
	    enroute_time = EXCLUDED.enroute_time,
	    fuel_time = EXCLUDED.fuel_time,
	    remarks = EXCLUDED.remarks,
	    route = EXCLUDED.route,
	    last_updated = EXCLUDED.last_updated
`

const ControllerColumns = `callsign, cid, logon_time, name, frequency, facility,
	rating, server, visual_range, text_atis, status, last_seen, last_updated`

const UpsertController = `
	INSERT INTO controllers (` + ControllerColumns + `)
	VALUES (:callsign, :cid, :logon_time, :name, :frequency, :facility,
		:rating, :server, :visual_range, :text_atis, :status, :last_seen, :last_updated)
	ON CONFLICT (callsign, cid, logon_time) DO UPDATE
	SET name = EXCLUDED.name,
	    frequency = EXCLUDED.frequency,
	    facility = EXCLUDED.facility,
	    rating = EXCLUDED.rating,
	    server = EXCLUDED.server,
	    visual_range = EXCLUDED.visual_range,
	    text_atis = EXCLUDED.text_atis,
	    status = EXCLUDED.status,
	    last_seen = EXCLUDED.last_seen,
	    last_updated = EXCLUDED.last_updated
`

const InsertTransceiver = `
	INSERT INTO transceivers (callsign, transceiver_id, frequency_hz,
		latitude, longitude, height_msl_m, height_agl_m, entity_type, timestamp)
	VALUES (:callsign, :transceiver_id, :frequency_hz,
		:latitude, :longitude, :height_msl_m, :height_agl_m, :entity_type, :timestamp)
`

// Session completion candidates. The summary dedup must use IS NOT DISTINCT
// FROM so that NULL CIDs can never resurrect an already summarized session;
// NOT IN over tuples is forbidden here.
const FlightCompletionCandidates = `
	SELECT f.callsign, f.cid, f.logon_time, MAX(f.last_updated) AS session_end
	  FROM flights f
	 GROUP BY f.callsign, f.cid, f.logon_time
	HAVING MAX(f.last_updated) < now() - ($1 * interval '1 minute')
	   AND NOT EXISTS (
	       SELECT 1 FROM flight_summaries s
	        WHERE s.callsign = f.callsign
	          AND s.cid IS NOT DISTINCT FROM f.cid
	          AND s.session_start_time = f.logon_time)
	 ORDER BY session_end
`

const ControllerCompletionCandidates = `
	SELECT c.callsign, c.cid, c.logon_time, MAX(c.last_updated) AS session_end
	  FROM controllers c
	 GROUP BY c.callsign, c.cid, c.logon_time
	HAVING MAX(c.last_updated) < now() - ($1 * interval '1 minute')
	   AND NOT EXISTS (
	       SELECT 1 FROM controller_summaries s
	        WHERE s.callsign = c.callsign
	          AND s.cid IS NOT DISTINCT FROM c.cid
	          AND s.session_start_time = c.logon_time)
	 ORDER BY session_end
`

// Reconnection merge: the window opens at the merged session end, never the
// original logon, and is half-open on the left.
const NextFlightReconnection = `
	SELECT logon_time, MAX(last_updated) AS chunk_end
	  FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time > $3
	   AND logon_time <= $3 + ($4 * interval '1 minute')
	 GROUP BY logon_time
	 ORDER BY logon_time
	 LIMIT 1
`

const NextControllerReconnection = `
	SELECT logon_time, MAX(last_updated) AS chunk_end
	  FROM controllers
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time > $3
	   AND logon_time <= $3 + ($4 * interval '1 minute')
	 GROUP BY logon_time
	 ORDER BY logon_time
	 LIMIT 1
`

const FlightSessionAggregate = `
	SELECT MIN(logon_time) AS session_start,
	       MAX(last_updated) AS session_end,
	       MAX(altitude) AS max_altitude,
	       MIN(altitude) AS min_altitude,
	       COALESCE(MAX(groundspeed), 0) AS max_speed
	  FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

const FlightSessionTransponders = `
	SELECT DISTINCT transponder
	  FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
	   AND transponder <> ''
	 ORDER BY transponder
`

const FlightSessionLatest = `
	SELECT * FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
	 ORDER BY last_updated DESC
	 LIMIT 1
`

const ControllerSessionFrequencies = `
	SELECT DISTINCT frequency
	  FROM controllers
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
	   AND frequency <> ''
	 ORDER BY frequency
`

const ArchiveFlights = `
	INSERT INTO flights_archive (` + FlightColumns + `, archived_at)
	SELECT ` + FlightColumns + `, now()
	  FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

const DeleteFlights = `
	DELETE FROM flights
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

const ArchiveControllers = `
	INSERT INTO controllers_archive (` + ControllerColumns + `, archived_at)
	SELECT ` + ControllerColumns + `, now()
	  FROM controllers
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

const DeleteControllers = `
	DELETE FROM controllers
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

const MarkControllersOffline = `
	UPDATE controllers
	   SET status = 'offline'
	 WHERE callsign = $1
	   AND cid IS NOT DISTINCT FROM $2
	   AND logon_time BETWEEN $3 AND $4
`

// Sector occupancy

const OpenSectorInterval = `
	INSERT INTO flight_sector_occupancy
		(callsign, sector_name, entry_timestamp, entry_lat, entry_lon,
		 entry_altitude, last_lat, last_lon, last_alt)
	VALUES ($1, $2, $3, $4, $5, $6, $4, $5, $6)
`

const CloseSectorIntervals = `
	UPDATE flight_sector_occupancy
	   SET exit_timestamp = $2,
	       duration_seconds = EXTRACT(EPOCH FROM ($2 - entry_timestamp))::bigint
	 WHERE callsign = $1
	   AND exit_timestamp IS NULL
`

const UpdateSectorLastPosition = `
	UPDATE flight_sector_occupancy
	   SET last_lat = $2,
	       last_lon = $3,
	       last_alt = $4
	 WHERE callsign = $1
	   AND exit_timestamp IS NULL
`

// Stale cleanup closes intervals whose callsign has gone silent. The exit
// timestamp is clamped to the entry so duration can never go negative.
const CloseStaleSectorIntervals = `
	UPDATE flight_sector_occupancy o
	   SET exit_timestamp = GREATEST(o.entry_timestamp, $1),
	       duration_seconds = EXTRACT(EPOCH FROM (GREATEST(o.entry_timestamp, $1) - o.entry_timestamp))::bigint
	 WHERE o.exit_timestamp IS NULL
	   AND NOT EXISTS (
	       SELECT 1 FROM flights f
	        WHERE f.callsign = o.callsign
	          AND f.last_updated >= $1)
	RETURNING o.callsign
`

const ListOpenSectorIntervals = `
	SELECT * FROM flight_sector_occupancy
	 WHERE exit_timestamp IS NULL
	 ORDER BY entry_timestamp
`

const CountOpenIntervalsForCallsign = `
	SELECT COUNT(*) FROM flight_sector_occupancy
	 WHERE callsign = $1
	   AND exit_timestamp IS NULL
`

const ListLiveFlightCallsigns = `
	SELECT DISTINCT callsign FROM flights
`
