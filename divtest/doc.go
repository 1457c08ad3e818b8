/*
Package divtest provides test doubles of the collaborators the dividend
engine depends on: authentication, stake and pool oracles, the time oracle
and a bank that executes transfers.
*/
package divtest
