/*
Package azddns keeps a DNS A record pointed at the current public IPv4 address of the machine running it.

Usage will always start with [azddns.New],
which returns a [Client] for one record-set.
New requires the record-set to update and a [Provider] implementation for a DNS provider,
usually [UsingAzure].
The address comes from a [Resolver]; the default asks a web service ([WebResolver]),
and [LambdaResolver], [DNSResolver], [InterfaceResolver] and [FromString] are available as alternatives.

[Client.RunDDNS] performs one update; [Client.Run] repeats it on an interval until its context is cancelled
or an update fails.
*/
package azddns
