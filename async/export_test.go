package async

// UntilHourForTesting exposes untilHour to tests.
var UntilHourForTesting = untilHour
