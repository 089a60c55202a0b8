/*
Pipeline wires the trading services into one single-threaded event graph.

# Module
  - market data: order books feed the execution algorithm
  - pricing: internal prices feed the streaming algorithm and the throttled display
  - execution: algo orders become execution orders, which are booked as trades
  - position & risk: trades roll into positions, positions into PV01 risk
  - inquiry: customer inquiries are quoted and completed

# Source
 1. inquiries, prices, trades and market data files, processed in that order
 2. every record is parsed, dispatched and settled before the next one is read

# Produce
  - executions, positions, risk, streaming, allinquiries and gui records
  - bucketed sector risk and a positions snapshot at the end of the run

# Deferred
  - the inquiry confirmation re-enters the inquiry service through a queue
    drained after each record
*/
package pipeline
